package restore

import (
	"context"
	"fmt"
	"sort"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/kuma"
)

// topologicalGroups returns the backup's groups ordered by ancestor-chain
// depth: roots first, then each nesting level. A parent id that is not
// itself a group in this backup counts as a root. The sort is stable, so
// groups at equal depth keep their backup order.
func topologicalGroups(monitors []backup.Monitor) []backup.Monitor {
	var groups []backup.Monitor
	byID := map[int]*backup.Monitor{}
	for i := range monitors {
		if monitors[i].IsGroup() {
			groups = append(groups, monitors[i])
			byID[monitors[i].ID] = &monitors[i]
		}
	}

	depth := func(g *backup.Monitor) int {
		d := 0
		cur := g.Parent
		// Bounded walk guards against a parent cycle in a corrupt backup.
		for cur != nil && d <= len(groups) {
			parent, ok := byID[*cur]
			if !ok {
				break
			}
			d++
			cur = parent.Parent
		}
		return d
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return depth(&groups[i]) < depth(&groups[j])
	})
	return groups
}

// RestoreGroups creates the backup's missing groups, parents strictly before
// children, and returns the backup-id -> server-id map. A group whose exact
// name already exists on the server is recorded under its existing id. A
// parent that is not in the map by creation time is treated as root.
func (r *Restorer) RestoreGroups(ctx context.Context, monitors []backup.Monitor) (map[int]int, error) {
	idMap := map[int]int{}
	groups := topologicalGroups(monitors)
	if len(groups) == 0 {
		return idMap, nil
	}

	p, err := r.beginPhase(ctx)
	if err != nil {
		return nil, err
	}
	defer p.end()

	existing, err := p.Monitors()
	if err != nil {
		return nil, err
	}
	existingGroups := map[string]int{}
	for _, m := range existing {
		if m.Type == "group" {
			existingGroups[m.Name] = m.ID
		}
	}

	for i := range groups {
		g := &groups[i]
		name := g.DisplayName()

		if id, ok := existingGroups[name]; ok {
			idMap[g.ID] = id
			r.logger.Printf("[SKIP] Group '%s' already exists -> id %d", name, id)
			continue
		}

		var parent *int
		if g.Parent != nil {
			if newID, ok := idMap[*g.Parent]; ok {
				parent = &newID
			}
		}

		payload := map[string]interface{}{
			"type":   "group",
			"name":   name,
			"parent": optionalInt(parent),
		}
		scrubPayload(payload)

		if r.dryRun {
			r.logger.Printf("[DRY] Would create group '%s' (parent %s)", name, describeParent(parent))
			idMap[g.ID] = -g.ID
			continue
		}

		res, err := p.call(func(s kuma.Session) (interface{}, error) {
			return s.AddMonitor(payload)
		})
		if err != nil {
			return nil, err
		}
		newID, err := kuma.ExtractMonitorID(res, name, p)
		if err != nil {
			return nil, err
		}

		r.logger.Printf("[OK] Created group '%s' -> id %d", name, newID)
		idMap[g.ID] = newID
	}

	return idMap, nil
}

func describeParent(parent *int) string {
	if parent == nil {
		return "none"
	}
	return fmt.Sprintf("id %d", *parent)
}
