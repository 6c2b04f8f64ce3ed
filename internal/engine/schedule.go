package engine

import (
	"fmt"

	"github.com/DaanHessen/fanlife/internal/content"
)

const DaysPerWeek = 7

// ScheduleSlot is one day's plan. ProjectID is only meaningful for write.
type ScheduleSlot struct {
	Action    string `json:"action,omitempty"`
	ProjectID ID     `json:"project_id,omitempty"`
}

// WeeklySchedule maps days 1-7 to slots. It is replaced wholesale each week.
type WeeklySchedule struct {
	Days [DaysPerWeek]ScheduleSlot `json:"days"`
}

// Slot returns the plan for day (1-based).
func (s WeeklySchedule) Slot(day int) ScheduleSlot {
	if day < 1 || day > DaysPerWeek {
		return ScheduleSlot{}
	}
	return s.Days[day-1]
}

// Problems lists what keeps the schedule from being runnable as planned. An
// empty result means every slot is filled and every write slot has a project
// that can still make progress.
func (s WeeklySchedule) Problems(w *World, t *content.Tables) []string {
	var out []string
	for i, slot := range s.Days {
		day := i + 1
		if slot.Action == "" {
			out = append(out, fmt.Sprintf("day %d: nothing scheduled", day))
			continue
		}
		if _, ok := t.Action(slot.Action); !ok {
			out = append(out, fmt.Sprintf("day %d: unknown action %q", day, slot.Action))
			continue
		}
		if slot.Action != content.ActionWrite {
			continue
		}
		p, ok := w.Projects[slot.ProjectID]
		switch {
		case slot.ProjectID == "":
			out = append(out, fmt.Sprintf("day %d: choose a project to write", day))
		case !ok:
			out = append(out, fmt.Sprintf("day %d: project no longer exists", day))
		case p.Complete:
			out = append(out, fmt.Sprintf("day %d: %q is already complete", day, p.Title))
		}
	}
	return out
}

func validateSchedule(w *World, t *content.Tables, s WeeklySchedule) error {
	for i, slot := range s.Days {
		if slot.Action == "" {
			if slot.ProjectID != "" {
				return invalid("day %d: project chosen without an action", i+1)
			}
			continue
		}
		if _, ok := t.Action(slot.Action); !ok {
			return invalid("day %d: unknown action %q", i+1, slot.Action)
		}
		if slot.ProjectID == "" {
			continue
		}
		if slot.Action != content.ActionWrite {
			return invalid("day %d: only write days take a project", i+1)
		}
		if _, ok := w.Projects[slot.ProjectID]; !ok {
			return invalid("day %d: unknown project %q", i+1, slot.ProjectID)
		}
	}
	return nil
}

// suggestSchedule fills a week from current stats: write the least finished
// project while stamina allows, rest before it runs out, and keep money up.
func suggestSchedule(w *World, t *content.Tables) WeeklySchedule {
	var s WeeklySchedule
	var target *Project
	for _, id := range sortedIDs(w.Projects) {
		p := w.Projects[id]
		if p.Complete {
			continue
		}
		if target == nil || p.Progress < target.Progress {
			target = p
		}
	}
	write, _ := t.Action(content.ActionWrite)
	stamina := w.Player.Stamina
	for i := range s.Days {
		var slot ScheduleSlot
		switch {
		case stamina < write.StaminaCost+5:
			slot = ScheduleSlot{Action: content.ActionRest}
		case target != nil && i%3 != 2:
			slot = ScheduleSlot{Action: content.ActionWrite, ProjectID: target.ID}
		case w.Player.Money < t.Balance.LivingExpense:
			slot = scheduleAction(t, "part_time")
		default:
			slot = scheduleAction(t, "read_source")
		}
		a, _ := t.Action(slot.Action)
		stamina = clampInt(stamina+a.Stamina-a.StaminaCost, 0, w.Player.MaxStamina)
		s.Days[i] = slot
	}
	return s
}

func scheduleAction(t *content.Tables, id string) ScheduleSlot {
	if _, ok := t.Action(id); ok {
		return ScheduleSlot{Action: id}
	}
	return ScheduleSlot{Action: content.ActionRest}
}
