package domain

import "strings"

// TaskLabel is one of the fixed kinds of work a session can be booked against.
type TaskLabel string

const (
	TaskTeaching TaskLabel = "Teaching"
	TaskAdmin    TaskLabel = "Admin"
	TaskPlanning TaskLabel = "Planning"
	TaskOther    TaskLabel = "Other"
)

// TaskLabels lists the accepted task labels in display order.
var TaskLabels = []TaskLabel{TaskTeaching, TaskAdmin, TaskPlanning, TaskOther}

// Location is one of the fixed sites a session can take place at.
type Location string

const (
	LocationVirginMary     Location = "Virgin Mary Mosque"
	LocationIslamicCentre  Location = "Australian Islamic Centre"
	LocationMaidstone      Location = "Maidstone Mosque"
	LocationCirclesOfLight Location = "Circles of Light Centre"
	LocationRemote         Location = "Remote"
)

// Locations lists the accepted locations in display order.
var Locations = []Location{
	LocationVirginMary,
	LocationIslamicCentre,
	LocationMaidstone,
	LocationCirclesOfLight,
	LocationRemote,
}

// ParseTaskLabel matches v case-insensitively against TaskLabels.
func ParseTaskLabel(v string) (TaskLabel, bool) {
	v = strings.TrimSpace(v)
	for _, t := range TaskLabels {
		if strings.EqualFold(string(t), v) {
			return t, true
		}
	}
	return "", false
}

// ParseLocation matches v case-insensitively against Locations.
func ParseLocation(v string) (Location, bool) {
	v = strings.TrimSpace(v)
	for _, l := range Locations {
		if strings.EqualFold(string(l), v) {
			return l, true
		}
	}
	return "", false
}
