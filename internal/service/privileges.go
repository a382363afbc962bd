package service

import (
	"fmt"
	"os/user"
	"runtime"
)

// DockerGroup is the group whose members may use the daemon socket without
// root.
const DockerGroup = "docker"

// Privileges describes what the current user may do with the daemon.
type Privileges struct {
	User        string
	Root        bool
	DockerGroup bool
}

// Sufficient reports whether the user can talk to the daemon socket and
// control the service without further elevation.
func (p Privileges) Sufficient() bool {
	return p.Root || p.DockerGroup
}

func (p Privileges) String() string {
	switch {
	case p.Root:
		return fmt.Sprintf("%s: running as root", p.User)
	case p.DockerGroup:
		return fmt.Sprintf("%s: member of the %q group (service control may still need sudo)", p.User, DockerGroup)
	default:
		return fmt.Sprintf("%s: not root and not in the %q group", p.User, DockerGroup)
	}
}

// CheckPrivileges inspects the current user and its groups.
func CheckPrivileges() (Privileges, error) {
	u, err := user.Current()
	if err != nil {
		return Privileges{}, fmt.Errorf("lookup current user: %w", err)
	}
	return privilegesOf(u, user.LookupGroupId)
}

func privilegesOf(u *user.User, lookupGroup func(gid string) (*user.Group, error)) (Privileges, error) {
	p := Privileges{User: u.Username}
	if runtime.GOOS != "windows" && u.Uid == "0" {
		p.Root = true
		return p, nil
	}
	gids, err := u.GroupIds()
	if err != nil {
		return p, fmt.Errorf("list groups of %s: %w", u.Username, err)
	}
	for _, gid := range gids {
		g, err := lookupGroup(gid)
		if err != nil {
			continue
		}
		if g.Name == DockerGroup {
			p.DockerGroup = true
			break
		}
	}
	return p, nil
}
