// Package mention resolves @token mentions against a thread's
// participant directory: configured agents unioned with whoever has
// recently reported presence, with disambiguation and reserved-word
// handling.
package mention

import (
	"sort"
	"strings"
)

// Profile is a participant's addressing metadata.
type Profile struct {
	ID       string
	Nickname string
	Client   string
	Model    string
	Roles    []string
}

// DisplayLabel formats a profile the way an ambiguity message lists a
// candidate: "nickname (client/model)", falling back to whatever
// suffix is available.
func (p Profile) DisplayLabel() string {
	nick := p.Nickname
	if nick == "" {
		nick = p.ID
	}
	suffix := p.suffix()
	if suffix == "" {
		return nick
	}
	return nick + " (" + suffix + ")"
}

func (p Profile) suffix() string {
	switch {
	case p.Client != "" && p.Model != "":
		return p.Client + "/" + p.Model
	case p.Client != "":
		return p.Client
	case p.Model != "":
		return p.Model
	default:
		return ""
	}
}

// Directory is the set of addressable participants in a thread at a
// point in time: built from configured agents unioned with the
// thread's presence snapshot.
type Directory struct {
	byID       map[string]Profile
	byNickname map[string][]string // lowercased nickname -> ids, in map iteration order
}

// NewDirectory builds a directory from profiles. Later entries with
// the same id overwrite earlier ones. ids are
// keyed case-insensitively so @Mention matches a mixed-case configured
// id; the profile itself still carries the original-case id.
func NewDirectory(profiles []Profile) *Directory {
	d := &Directory{
		byID:       map[string]Profile{},
		byNickname: map[string][]string{},
	}
	for _, p := range profiles {
		d.byID[strings.ToLower(p.ID)] = p
	}
	for _, p := range d.byID {
		if p.Nickname == "" {
			continue
		}
		key := strings.ToLower(p.Nickname)
		d.byNickname[key] = appendUnique(d.byNickname[key], p.ID)
	}
	return d
}

func (d *Directory) byIDExact(token string) (Profile, bool) {
	p, ok := d.byID[strings.ToLower(token)]
	return p, ok
}

func (d *Directory) byNick(token string) []string {
	return d.byNickname[strings.ToLower(token)]
}

// byCategory returns every participant id whose role, client, or model
// equals token (case-insensitive).
func (d *Directory) byCategory(token string) []string {
	var out []string
	lowered := strings.ToLower(token)
	for _, p := range d.byID {
		if strings.ToLower(p.Client) == lowered || strings.ToLower(p.Model) == lowered {
			out = append(out, p.ID)
			continue
		}
		for _, role := range p.Roles {
			if strings.ToLower(role) == lowered {
				out = append(out, p.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
