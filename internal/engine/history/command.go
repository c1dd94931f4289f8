package history

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/piecetable/internal/engine/piece"
)

// Command represents a composable edit action that can be executed and undone.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	// Executing a command a second time (redo) reapplies its recorded result.
	Execute(t *piece.Table) error

	// Undo reverses the command and returns an error if it fails.
	Undo(t *piece.Table) error

	// Description returns a human-readable description of the command.
	Description() string
}

// states holds the piece lists on either side of an executed edit.
// Undo and redo restore them instead of replaying the edit, which is valid
// because the added store only grows.
type states struct {
	before, after piece.View
	done          bool
}

func (s *states) apply(t *piece.Table, edit func(before piece.View) error) error {
	if s.done {
		t.Restore(s.after)
		return nil
	}
	before := t.Snapshot()
	if err := edit(before); err != nil {
		return err
	}
	s.before, s.after, s.done = before, t.Snapshot(), true
	return nil
}

func (s *states) revert(t *piece.Table) error {
	if !s.done {
		return ErrNotExecuted
	}
	t.Restore(s.before)
	return nil
}

// InsertCommand inserts text at a position.
type InsertCommand struct {
	Position int
	Text     string

	op *Operation
	states
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(position int, text string) *InsertCommand {
	return &InsertCommand{Position: position, Text: text}
}

// Execute inserts the text.
func (c *InsertCommand) Execute(t *piece.Table) error {
	return c.apply(t, func(piece.View) error {
		if err := t.Insert(c.Position, c.Text); err != nil {
			return fmt.Errorf("insert at offset %d: %w", c.Position, err)
		}
		c.op = NewInsertOperation(c.Position, c.Text)
		return nil
	})
}

// Undo removes the inserted text.
func (c *InsertCommand) Undo(t *piece.Table) error {
	return c.revert(t)
}

// Operation returns the recorded edit, or nil before the first Execute.
func (c *InsertCommand) Operation() *Operation {
	return c.op
}

// Description returns a description of the insert.
func (c *InsertCommand) Description() string {
	return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(c.Text))
}

// DeleteCommand removes a run of text.
type DeleteCommand struct {
	Position int
	Length   int

	op *Operation
	states
}

// NewDeleteCommand creates a new delete command.
func NewDeleteCommand(position, length int) *DeleteCommand {
	return &DeleteCommand{Position: position, Length: length}
}

// Execute deletes the range, recording the removed text.
func (c *DeleteCommand) Execute(t *piece.Table) error {
	return c.apply(t, func(before piece.View) error {
		if err := t.Delete(c.Position, c.Length); err != nil {
			return fmt.Errorf("delete at offset %d: %w", c.Position, err)
		}
		deleted, err := before.Slice(c.Position, c.Position+c.Length)
		if err != nil {
			return err
		}
		c.op = NewDeleteOperation(c.Position, deleted)
		return nil
	})
}

// Undo restores the deleted text.
func (c *DeleteCommand) Undo(t *piece.Table) error {
	return c.revert(t)
}

// Operation returns the recorded edit, or nil before the first Execute.
func (c *DeleteCommand) Operation() *Operation {
	return c.op
}

// Description returns a description of the delete.
func (c *DeleteCommand) Description() string {
	return fmt.Sprintf("Delete %d characters", c.Length)
}

// ReplaceCommand replaces a run of text with new text.
type ReplaceCommand struct {
	Position int
	Length   int
	Text     string

	op *Operation
	states
}

// NewReplaceCommand creates a new replace command.
func NewReplaceCommand(position, length int, text string) *ReplaceCommand {
	return &ReplaceCommand{Position: position, Length: length, Text: text}
}

// Execute performs the replacement.
func (c *ReplaceCommand) Execute(t *piece.Table) error {
	return c.apply(t, func(before piece.View) error {
		if err := t.Replace(c.Position, c.Length, c.Text); err != nil {
			return fmt.Errorf("replace at offset %d: %w", c.Position, err)
		}
		old, err := before.Slice(c.Position, c.Position+c.Length)
		if err != nil {
			return err
		}
		c.op = NewReplaceOperation(c.Position, old, c.Text)
		return nil
	})
}

// Undo restores the replaced text.
func (c *ReplaceCommand) Undo(t *piece.Table) error {
	return c.revert(t)
}

// Operation returns the recorded edit, or nil before the first Execute.
func (c *ReplaceCommand) Operation() *Operation {
	return c.op
}

// Description returns a description of the replacement.
func (c *ReplaceCommand) Description() string {
	newLen := utf8.RuneCountInString(c.Text)
	if c.Length == 0 {
		return fmt.Sprintf("Insert %d characters", newLen)
	}
	if newLen == 0 {
		return fmt.Sprintf("Delete %d characters", c.Length)
	}
	return fmt.Sprintf("Replace %d with %d characters", c.Length, newLen)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(t *piece.Table) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(t); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(t)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(t *piece.Table) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(t); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}

// Operations returns the recorded edits of all commands in execution order.
func (c *CompoundCommand) Operations() OperationList {
	var ops OperationList
	for _, cmd := range c.Commands {
		ops = append(ops, operationsOf(cmd)...)
	}
	return ops
}

// operationsOf returns the edits recorded by cmd.
func operationsOf(cmd Command) OperationList {
	switch c := cmd.(type) {
	case *CompoundCommand:
		return c.Operations()
	case interface{ Operation() *Operation }:
		if op := c.Operation(); op != nil {
			return OperationList{op}
		}
	}
	return nil
}
