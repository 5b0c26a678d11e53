package probe

import "io"

// BoundedBody buffers at most limit bytes from r. The bool reports whether r
// held more than limit; callers close the source to release the connection.
// A read error before the cap is reached propagates unchanged
func BoundedBody(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	buf, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, false, err
	}
	if int64(len(buf)) < limit {
		return buf, false, nil
	}

	// at the cap; one extra read tells a body of exactly limit bytes apart
	// from a capped one
	var probe [1]byte
	n, err := r.Read(probe[:])
	if n > 0 {
		return buf, true, nil
	}
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	return buf, false, nil
}
