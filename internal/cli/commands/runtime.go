package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/cli/app"
	"github.com/pantryhub/pantry/internal/models"
)

const (
	// AnnotationRoute names the route a view renders; the root command
	// guards it before the view runs.
	AnnotationRoute = "route"
	// AnnotationStandalone marks commands that run without configuration
	AnnotationStandalone = "standalone"
)

// Runtime is filled in by the root command before any view runs
type Runtime struct {
	App *app.App
}

func routed(path string) map[string]string {
	return map[string]string{AnnotationRoute: path}
}

// RouteOf returns the route of cmd or its nearest annotated parent
func RouteOf(cmd *cobra.Command) (string, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		if path, ok := c.Annotations[AnnotationRoute]; ok {
			return path, true
		}
	}
	return "", false
}

// IsStandalone reports whether cmd or a parent is marked standalone
func IsStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[AnnotationStandalone] == "true" {
			return true
		}
	}
	return false
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

// confirm asks before destructive operations unless --yes was given
func (rt *Runtime) confirm(yes bool, label string) (bool, error) {
	if yes {
		return true, nil
	}
	return rt.App.UI.Confirm(label)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *models.Timestamp) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatDate(d *models.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}

func formatQuantity(q float64, unit string) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
