package ai

import (
	"fmt"
	"strings"

	"alcyxob/ecofit/internal/domain"
)

// DietInput describes the diet a professional wants drafted.
type DietInput struct {
	ClientName    string
	Objective     string
	DailyCalories int
	MealsPerDay   int
	Restrictions  []string
	Notes         string
}

// WorkoutInput describes a single workout.
type WorkoutInput struct {
	ClientName      string
	Objective       string
	Level           string
	DurationMinutes int
	Equipment       []string
	Focus           string
	Notes           string
}

// DivisionsInput describes a rotating split of 2 or 3 workouts.
type DivisionsInput struct {
	ClientName  string
	Objective   string
	Level       string
	Divisions   int
	DaysPerWeek int
	Equipment   []string
	Notes       string
}

// ScheduleInput asks which weekday trains which division.
type ScheduleInput struct {
	Divisions       []domain.DivisionLabel
	DaysPerWeek     int
	UnavailableDays []domain.Weekday
	Notes           string
}

const systemPrompt = "You are an assistant for certified fitness and nutrition professionals. " +
	"You write drafts that a professional will review before a client sees them. " +
	"Answer with a single JSON object and nothing else."

func dietPrompt(in DietInput) (string, string) {
	var b strings.Builder
	b.WriteString("Draft a diet plan.\n")
	writeField(&b, "Client", in.ClientName)
	writeField(&b, "Objective", in.Objective)
	if in.DailyCalories > 0 {
		writeField(&b, "Daily calories", fmt.Sprintf("%d kcal", in.DailyCalories))
	}
	if in.MealsPerDay > 0 {
		writeField(&b, "Meals per day", fmt.Sprint(in.MealsPerDay))
	}
	writeField(&b, "Restrictions", strings.Join(in.Restrictions, ", "))
	writeField(&b, "Notes", in.Notes)
	b.WriteString(`
Respond with:
{"name": string, "objective": string, "methodology": string, "notes": string,
 "meals": [{"name": string, "time": "HH:MM", "notes": string,
            "foods": [{"name": string, "quantity": string, "calories": number}]}]}`)
	return systemPrompt, b.String()
}

func workoutPrompt(in WorkoutInput) (string, string) {
	var b strings.Builder
	b.WriteString("Draft one workout session.\n")
	writeWorkoutContext(&b, in.ClientName, in.Objective, in.Level, in.Equipment, in.Notes)
	if in.DurationMinutes > 0 {
		writeField(&b, "Session length", fmt.Sprintf("%d minutes", in.DurationMinutes))
	}
	writeField(&b, "Focus", in.Focus)
	b.WriteString("\nRespond with:\n" + workoutShape)
	return systemPrompt, b.String()
}

func divisionsPrompt(in DivisionsInput) (string, string) {
	n := clampDivisions(in.Divisions)
	labels := make([]string, n)
	for i, l := range domain.Divisions[:n] {
		labels[i] = string(l)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Draft a training split of %d workouts labelled %s.\n", n, strings.Join(labels, ", "))
	writeWorkoutContext(&b, in.ClientName, in.Objective, in.Level, in.Equipment, in.Notes)
	if in.DaysPerWeek > 0 {
		writeField(&b, "Training days per week", fmt.Sprint(in.DaysPerWeek))
	}
	b.WriteString("\nRespond with:\n")
	b.WriteString(`{"name": string, "methodology": string, "divisions": [{"label": "A"|"B"|"C", ` +
		strings.TrimPrefix(workoutShape, "{"))
	b.WriteString("]}")
	return systemPrompt, b.String()
}

func schedulePrompt(in ScheduleInput) (string, string) {
	labels := make([]string, 0, len(in.Divisions))
	for _, l := range in.Divisions {
		labels = append(labels, string(l))
	}
	unavailable := make([]string, 0, len(in.UnavailableDays))
	for _, d := range in.UnavailableDays {
		unavailable = append(unavailable, string(d))
	}

	var b strings.Builder
	b.WriteString("Assign training divisions to the days of the week. Days without training are rest days.\n")
	writeField(&b, "Divisions", strings.Join(labels, ", "))
	if in.DaysPerWeek > 0 {
		writeField(&b, "Training days per week", fmt.Sprint(in.DaysPerWeek))
	}
	writeField(&b, "Unavailable days", strings.Join(unavailable, ", "))
	writeField(&b, "Notes", in.Notes)
	b.WriteString(`
Respond with:
{"days": {"mon": "A"|"B"|"C"|null, "tue": ..., "wed": ..., "thu": ..., "fri": ..., "sat": ..., "sun": ...},
 "rationale": string}`)
	return systemPrompt, b.String()
}

const workoutShape = `{"name": string, "objective": string, "methodology": string, "notes": string,
 "exercises": [{"name": string, "sets": number, "reps": string, "rest": string,
                "notes": string, "alternative": string}]}`

func writeWorkoutContext(b *strings.Builder, client, objective, level string, equipment []string, notes string) {
	writeField(b, "Client", client)
	writeField(b, "Objective", objective)
	writeField(b, "Level", level)
	writeField(b, "Equipment", strings.Join(equipment, ", "))
	writeField(b, "Notes", notes)
}

func writeField(b *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, value)
}

func clampDivisions(n int) int {
	if n < 2 {
		return 2
	}
	if n > len(domain.Divisions) {
		return len(domain.Divisions)
	}
	return n
}
