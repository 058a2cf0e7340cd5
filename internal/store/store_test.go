package store

import (
	"path"
	"testing"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		tenant string
		record string
		ext    string
		want   string
	}{
		{"u1", "r1", "", "tenants/u1/r1.json"},
		{"u1", "r1", "zst", "tenants/u1/r1.json.zst"},
		{"a/b", "c/d", "gz", "tenants/a%2Fb/c%2Fd.json.gz"},
		{"u 1", "r:1", "", "tenants/u%201/r:1.json"},
		{".", "r1", "", "tenants/%2E/r1.json"},
		{"..", "r1", "zst", "tenants/%2E%2E/r1.json.zst"},
		{"...", "..", "", "tenants/.../...json"},
	}

	for _, tt := range tests {
		if got := ObjectPath(tt.tenant, tt.record, tt.ext); got != tt.want {
			t.Errorf("ObjectPath(%q, %q, %q) = %q, want %q", tt.tenant, tt.record, tt.ext, got, tt.want)
		}
	}
}

func TestObjectPath_Distinct(t *testing.T) {
	if ObjectPath("a/b", "c", "") == ObjectPath("a", "b/c", "") {
		t.Error("ObjectPath() should not collide for ids containing '/'")
	}
}

func TestObjectPath_DotTenantsStayUnderTenants(t *testing.T) {
	for _, tenant := range []string{".", ".."} {
		p := path.Clean(ObjectPath(tenant, "r1", ""))
		if dir := path.Dir(path.Dir(p)); dir != "tenants" {
			t.Errorf("ObjectPath(%q) cleans to %q, want a directory under tenants/", tenant, p)
		}
	}
	if ObjectPath("..", "r", "") == ObjectPath("%2E%2E", "r", "") {
		t.Error("ObjectPath() should not collide for an id that looks escaped")
	}
}
