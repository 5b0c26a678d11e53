package strings

import "testing"

func TestMustString(t *testing.T) {
	if got := MustString("ok", "name"); got != "ok" {
		t.Fatalf("want ok got %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("want panic for empty name")
		}
	}()
	_ = MustString("   ", "name")
}

func TestPtrAndDeref(t *testing.T) {
	t.Parallel()

	if Ptr("") != nil {
		t.Fatal("Ptr(\"\") should be nil")
	}
	p := Ptr("x")
	if p == nil || *p != "x" {
		t.Fatalf("Ptr(x) = %v", p)
	}
	if got := Deref(p); got != "x" {
		t.Fatalf("Deref = %q", got)
	}
	if got := Deref(nil); got != "" {
		t.Fatalf("Deref(nil) = %q", got)
	}
}

func TestSQLNullVariants(t *testing.T) {
	t.Parallel()

	if SQLNull("  ") != nil {
		t.Fatal("blank should map to nil")
	}
	if got := SQLNull("v"); got != "v" {
		t.Fatalf("SQLNull(v) = %v", got)
	}
	if SQLNullPtr(nil) != nil {
		t.Fatal("nil ptr should map to nil")
	}
	blank := "   "
	if SQLNullPtr(&blank) != nil {
		t.Fatal("blank ptr should map to nil")
	}
	v := "v"
	if got := SQLNullPtr(&v); got != "v" {
		t.Fatalf("SQLNullPtr(v) = %v", got)
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Cloudinary", "cloudinary"},
		{"AWS S3 (us-east-1)", "aws-s3-us-east-1"},
		{"Café Résumé", "cafe-resume"},
		{"  spaced   out  ", "spaced-out"},
		{"Already-Slugged", "already-slugged"},
		{"___", ""},
		{"", ""},
		{"v2.1 API", "v2-1-api"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
