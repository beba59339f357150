package brief

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	maxEventLines = 3
	maxPickLines  = 2
	maxOTWLines   = 3
)

// Render produces the Markdown report for a composed brief.
func Render(b Brief, now time.Time) string {
	var lines []string
	lines = append(lines, "# Daily Brief — "+now.Format("2006-01-02 (Mon) 15:04 MST"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("**Weather:** Now %s°F, UV %s · %s",
		optFloat(b.Weather.TempNow), optFloat(b.Weather.UVNow), b.WeatherLine))
	if b.CommuteOK {
		lines = append(lines, fmt.Sprintf("**Commute:** ETA %d min · Leave by %s · Arrive by %s",
			b.Commute.ETAMin, b.Commute.LeaveBy, b.Commute.ArriveBy))
		if b.Commute.NeedReroute {
			lines = append(lines, fmt.Sprintf("**Reroute:** alternative saves %d min", b.Commute.AltSaveMin))
		}
	} else {
		lines = append(lines, "**Commute:** unavailable")
	}
	lines = append(lines, "")

	lines = append(lines, "## First 3 events")
	for i, e := range b.Events {
		if i >= maxEventLines {
			break
		}
		line := fmt.Sprintf("- **%s** — %s → %s", orElse(e.Summary, "(no title)"), orElse(e.Start, "?"), orElse(e.End, "?"))
		if e.Location != "" {
			line += " · " + e.Location
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")

	plan := b.Plan.Plan
	if plan.Scenario != "" {
		lines = append(lines, "## Plan")
		lines = append(lines, "- **Scenario**: "+plan.Scenario)
		lines = append(lines, fmt.Sprintf("- **Event**: %s @ %s", orElse(plan.EventTitle, "?"), orElse(plan.EventTime, "?")))
		if len(plan.Checklist) > 0 {
			lines = append(lines, "- **Checklist:** "+strings.Join(plan.Checklist, "; "))
		}
		if len(plan.Questions) > 0 {
			lines = append(lines, "- **Questions:** "+strings.Join(plan.Questions, "; "))
		}
		lines = append(lines, "")
	}

	if len(b.Picks) > 0 {
		lines = append(lines, "## Picks")
		for i, p := range b.Picks {
			if i >= maxPickLines {
				break
			}
			line := fmt.Sprintf("- **%s** — $%s (Prime %t, %sd)", p.Title, optFloat(p.Price), p.Prime, optInt(p.DeliveryDays))
			if p.ProductURL != "" {
				line += " (link)"
			}
			lines = append(lines, line)
		}
	}

	if len(b.OTW) > 0 {
		lines = append(lines, "## On-the-way (OTW)")
		for i, p := range b.OTW {
			if i >= maxOTWLines {
				break
			}
			var links []string
			if p.URL != "" {
				links = append(links, "site")
			}
			if p.MapURL != "" {
				links = append(links, "map")
			}
			line := fmt.Sprintf("- **%s** — +%d min · %s", p.Name, p.DetourMin, p.Address)
			if len(links) > 0 {
				line += " [" + strings.Join(links, " · ") + "]"
			}
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func optFloat(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func optInt(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
