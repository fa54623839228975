package resolver

import (
	"fmt"
	"net/url"

	"github.com/timvideos/fwfetch/internal/utils"
)

// Selection is what the user asked for.
type Selection struct {
	User     string
	Branch   string
	Revision string // explicit revision; wins over Channel
	Channel  string
	Platform string
	Target   string
	Arch     string
	Firmware string
	Output   string
}

// ArchiveURL is the contents API directory holding one directory per revision.
func ArchiveURL(apiBase, repo string, sel Selection) string {
	base := fmt.Sprintf("%s/repos/%s/%s/contents/archive", apiBase, url.PathEscape(sel.User), url.PathEscape(repo))
	return utils.DirURL(base, sel.Branch)
}
