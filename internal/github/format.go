package github

import (
	"fmt"
	"sort"
	"strings"

	"growthos/internal/utils"
)

// Format renders a snapshot as plain text for the analysis prompt, capped at limit characters
func Format(s *Snapshot, limit int) string {
	var b strings.Builder

	p := s.Profile
	fmt.Fprintf(&b, "GitHub: %s", p.Login)
	if p.Name != "" {
		fmt.Fprintf(&b, " (%s)", p.Name)
	}
	b.WriteString("\n")
	writeField(&b, "Bio", p.Bio)
	writeField(&b, "Company", p.Company)
	writeField(&b, "Location", p.Location)
	writeField(&b, "Website", p.Blog)
	fmt.Fprintf(&b, "Public repos: %d, Followers: %d, Following: %d\n", p.PublicRepos, p.Followers, p.Following)
	if p.CreatedAt != "" {
		fmt.Fprintf(&b, "Member since: %s\n", dateOnly(p.CreatedAt))
	}

	repos := ownRepos(s.Repos)
	if len(repos) > 0 {
		fmt.Fprintf(&b, "\nRepositories (%d):\n", len(repos))
		for _, r := range repos {
			fmt.Fprintf(&b, "- %s", r.Name)
			var meta []string
			if r.Language != "" {
				meta = append(meta, r.Language)
			}
			meta = append(meta, fmt.Sprintf("%d stars", r.Stars))
			if r.Forks > 0 {
				meta = append(meta, fmt.Sprintf("%d forks", r.Forks))
			}
			if r.LastPush != "" {
				meta = append(meta, "pushed "+dateOnly(r.LastPush))
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(meta, ", "))
			if r.Description != "" {
				fmt.Fprintf(&b, ": %s", r.Description)
			}
			if len(r.Topics) > 0 {
				fmt.Fprintf(&b, " (topics: %s)", strings.Join(r.Topics, ", "))
			}
			b.WriteString("\n")
		}
	}

	return utils.TruncateRunes(strings.TrimSpace(b.String()), limit)
}

// ownRepos drops forks and archived repositories and orders the rest by stars
func ownRepos(repos []Repo) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.Archived {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stars > out[j].Stars
	})
	return out
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
