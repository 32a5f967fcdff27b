package domain

import (
	"time"

	"github.com/google/uuid"
)

// Food is one item of a meal.
type Food struct {
	Name     string   `json:"name" bson:"name"`
	Quantity string   `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Calories *float64 `json:"calories,omitempty" bson:"calories,omitempty"`
	Notes    string   `json:"notes,omitempty" bson:"notes,omitempty"`
}

// DietMeal is one ordered meal of a diet with its embedded food list.
type DietMeal struct {
	ID       uuid.UUID `json:"id"`
	DietID   uuid.UUID `json:"diet_id"`
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Time     string    `json:"time,omitempty"`
	Foods    []Food    `json:"foods"`
	Notes    string    `json:"notes,omitempty"`
}

// Diet is a nutrition plan.
type Diet struct {
	Plan
	Meals []DietMeal `json:"meals"`
}

// NewDiet returns a draft diet.
func NewDiet(professionalID uuid.UUID, clientID *uuid.UUID, name string, now time.Time) *Diet {
	return &Diet{Plan: NewPlan(professionalID, clientID, name, now)}
}

// SetMeals replaces the meal list, assigning ids and positions.
func (d *Diet) SetMeals(meals []DietMeal) {
	out := make([]DietMeal, len(meals))
	for i, m := range meals {
		m.ID = uuid.New()
		m.DietID = d.ID
		m.Position = i
		if m.Foods == nil {
			m.Foods = []Food{}
		}
		out[i] = m
	}
	d.Meals = out
}

// TotalCalories sums the calories of every food that declares them.
func (d *Diet) TotalCalories() float64 {
	var total float64
	for _, m := range d.Meals {
		for _, f := range m.Foods {
			if f.Calories != nil {
				total += *f.Calories
			}
		}
	}
	return total
}
