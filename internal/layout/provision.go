package layout

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ksyq12/vhostprov/internal/config"
	"github.com/ksyq12/vhostprov/internal/logger"
)

const (
	dirMode   fs.FileMode = 0750
	indexMode fs.FileMode = 0644
)

// Identity is a resolved numeric owner.
type Identity struct {
	UID int
	GID int
}

// IdentityLookup resolves a user and group name.
type IdentityLookup func(userName, groupName string) (Identity, error)

// LookupIdentity resolves names through the system user database.
func LookupIdentity(userName, groupName string) (Identity, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "unknown user %s", userName)
	}
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "unknown group %s", groupName)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "non-numeric uid for %s", userName)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return Identity{}, errors.Wrapf(err, "non-numeric gid for %s", groupName)
	}
	return Identity{UID: uid, GID: gid}, nil
}

// Provisioner creates site directories and applies ownership and modes.
type Provisioner struct {
	User       string
	Group      string
	WriteIndex bool
	Lookup     IdentityLookup
}

// NewProvisioner creates a Provisioner from the configured web identity.
func NewProvisioner(cfg *config.Config) *Provisioner {
	return &Provisioner{
		User:       cfg.WebUser,
		Group:      cfg.WebGroup,
		WriteIndex: cfg.WriteIndex,
		Lookup:     LookupIdentity,
	}
}

// Provision creates the layout's directories and sets ownership and modes
// recursively. Existing directories and files are kept. There is no
// rollback: whatever was created before a failure stays.
func (p *Provisioner) Provision(l Layout) error {
	lookup := p.Lookup
	if lookup == nil {
		lookup = LookupIdentity
	}
	id, err := lookup(p.User, p.Group)
	if err != nil {
		return err
	}

	for _, dir := range l.Dirs() {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	if err := applyTree(l.SiteDir, id); err != nil {
		return err
	}
	logger.DebugFields("site tree ready", logger.Fields{
		"dir":   l.SiteDir,
		"owner": fmt.Sprintf("%s:%s", p.User, p.Group),
	})

	if p.WriteIndex {
		if err := writeIndex(l.IndexFile(), l.Domain, id); err != nil {
			return err
		}
	}
	return nil
}

// applyTree chowns and chmods everything under root, root included.
func applyTree(root string, id Identity) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "failed to walk %s", path)
		}
		if err := os.Lchown(path, id.UID, id.GID); err != nil {
			return errors.Wrapf(err, "failed to chown %s", path)
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if err := os.Chmod(path, dirMode); err != nil {
			return errors.Wrapf(err, "failed to chmod %s", path)
		}
		return nil
	})
}

// writeIndex creates the greeting page if it does not exist yet. The
// owner and mode are applied either way so re-runs restore 0644.
func writeIndex(path, domain string, id Identity) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(indexContent(domain)), indexMode); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
		logger.Debug("wrote %s", path)
	} else if err != nil {
		return errors.Wrapf(err, "failed to stat %s", path)
	}

	if err := os.Chown(path, id.UID, id.GID); err != nil {
		return errors.Wrapf(err, "failed to chown %s", path)
	}
	if err := os.Chmod(path, indexMode); err != nil {
		return errors.Wrapf(err, "failed to chmod %s", path)
	}
	return nil
}

func indexContent(domain string) string {
	return fmt.Sprintf("<?php\necho 'Hello from %s';\n", domain)
}
