package tarindex

import (
	"path"
	"strings"
)

// PathMod moves paths from below BaseDir to below ModDir.
type PathMod struct {
	BaseDir string
	ModDir  string
}

// FixPath returns orig with BaseDir replaced by ModDir. Paths outside BaseDir
// are placed below ModDir as a whole.
func (mod PathMod) FixPath(orig string) string {
	base := strings.TrimSuffix(mod.BaseDir, "/")
	switch {
	case orig == base || orig == mod.BaseDir:
		return mod.ModDir
	case strings.HasPrefix(orig, base+"/"):
		return path.Join(mod.ModDir, orig[len(base)+1:])
	}
	return path.Join(mod.ModDir, orig)
}
