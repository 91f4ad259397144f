// Package task defines the billable task records returned by the timesheet
// portal and the per-month catalog snapshot they are loaded into.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTaskNotFound  = errors.New("task not found in catalog")
	ErrNotSelectable = errors.New("task has no remaining balance")
)

// Task is one assignable unit of billable work for a month. Hour fields are
// kept as the portal formats them (comma decimal separator).
type Task struct {
	Proposal      string `json:"proposta"`
	Client        string `json:"cliente"`
	Project       string `json:"projeto"`
	Name          string `json:"tarefa"`
	HoursReleased string `json:"horas_liberadas"`
	HoursBooked   string `json:"horas_apontadas"`
	Balance       string `json:"saldo"`
}

// Key returns the stable identity of the task.
func (t Task) Key() Key {
	return Key{Client: t.Client, Project: t.Project, Task: t.Name}
}

// Selectable reports whether the task can be bound to a period.
func (t Task) Selectable() bool {
	return IsSelectable(t.Balance)
}

// Label renders the task the way the portal lists it.
func (t Task) Label() string {
	return fmt.Sprintf("%s - %s - %s (balance: %s)", t.Client, t.Project, t.Name, t.Balance)
}

// keySep separates the parts of a key in its text form.
const keySep = " / "

// Key identifies a task by its client, project and task name. Unlike a row
// position it survives catalog reloads.
type Key struct {
	Client  string `json:"client"`
	Project string `json:"project"`
	Task    string `json:"task"`
}

// IsZero reports whether no task is selected.
func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) String() string {
	if k.IsZero() {
		return ""
	}
	return k.Client + keySep + k.Project + keySep + k.Task
}

// ParseKey parses the "client / project / task" form produced by String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, keySep)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid task key %q: want %q", s, "client / project / task")
	}

	k := Key{
		Client:  strings.TrimSpace(parts[0]),
		Project: strings.TrimSpace(parts[1]),
		Task:    strings.TrimSpace(parts[2]),
	}
	if k.IsZero() {
		return Key{}, fmt.Errorf("invalid task key %q: empty", s)
	}
	return k, nil
}

// ParseDecimal parses a locale formatted decimal such as "1.234,5" or "-2,0".
// When a comma is present, dots are treated as thousands separators.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse decimal: empty value")
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

// IsSelectable reports whether a balance is strictly positive. Balances that
// do not parse are never selectable.
func IsSelectable(balance string) bool {
	v, err := ParseDecimal(balance)
	if err != nil {
		return false
	}
	return v > 0
}

// Catalog is the immutable snapshot of tasks fetched for one month.
type Catalog struct {
	Month    int       `json:"month"`
	Year     int       `json:"year"`
	Tasks    []Task    `json:"tasks"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewCatalog creates a snapshot for the given month.
func NewCatalog(month, year int, tasks []Task, now time.Time) Catalog {
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return Catalog{Month: month, Year: year, Tasks: cp, LoadedAt: now}
}

// Len returns the number of tasks in the snapshot.
func (c Catalog) Len() int {
	return len(c.Tasks)
}

// Empty reports whether no tasks are loaded.
func (c Catalog) Empty() bool {
	return len(c.Tasks) == 0
}

// Selectable returns the tasks with a positive balance, in catalog order.
func (c Catalog) Selectable() []Task {
	var out []Task
	for _, t := range c.Tasks {
		if t.Selectable() {
			out = append(out, t)
		}
	}
	return out
}

// IndexOf returns the position of the task with the given key in the full
// snapshot. This is the index the automation backend expects.
func (c Catalog) IndexOf(k Key) (int, bool) {
	if k.IsZero() {
		return -1, false
	}
	for i, t := range c.Tasks {
		if t.Key() == k {
			return i, true
		}
	}
	return -1, false
}

// At returns the task at position i.
func (c Catalog) At(i int) (Task, bool) {
	if i < 0 || i >= len(c.Tasks) {
		return Task{}, false
	}
	return c.Tasks[i], true
}

// Resolve finds a task by a user supplied reference: either the 1-based row
// number shown by listings (optionally prefixed with '#') or a key string.
func (c Catalog) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)

	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		t, ok := c.At(n - 1)
		if !ok {
			return Task{}, fmt.Errorf("row %d: %w", n, ErrTaskNotFound)
		}
		return t, nil
	}

	k, err := ParseKey(ref)
	if err != nil {
		return Task{}, err
	}

	i, ok := c.IndexOf(k)
	if !ok {
		return Task{}, fmt.Errorf("%s: %w", k, ErrTaskNotFound)
	}
	return c.Tasks[i], nil
}

// ResolveSelectable is Resolve restricted to tasks with a positive balance.
func (c Catalog) ResolveSelectable(ref string) (Task, error) {
	t, err := c.Resolve(ref)
	if err != nil {
		return Task{}, err
	}
	if !t.Selectable() {
		return Task{}, fmt.Errorf("%s (balance %s): %w", t.Key(), t.Balance, ErrNotSelectable)
	}
	return t, nil
}
