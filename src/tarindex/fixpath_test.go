package tarindex

import (
	"testing"
)

func TestFixPath(t *testing.T) {
	for _, tc := range []struct {
		mod  PathMod
		orig string
		want string
	}{
		{PathMod{BaseDir: "/tmp/", ModDir: "./"}, "/tmp/something", "something"},
		{PathMod{BaseDir: "/tmp/", ModDir: "./"}, "/tmp", "./"},
		{PathMod{BaseDir: "/tmp", ModDir: "/root"}, "/tmp/a/b", "/root/a/b"},
		{PathMod{BaseDir: "/tmp", ModDir: "/root"}, "/tmpfile", "/root/tmpfile"},
		{PathMod{BaseDir: "/", ModDir: "snap"}, "/etc/hosts", "snap/etc/hosts"},
	} {
		if n := tc.mod.FixPath(tc.orig); n != tc.want {
			t.Errorf("FixPath(%q) with %+v: %s != %s", tc.orig, tc.mod, n, tc.want)
		}
	}
}
