package drawing

type Command interface {
	SessionID() string
}

type AddStrokeCommand struct {
	Session string
	Stroke  Stroke
}

func (c AddStrokeCommand) SessionID() string { return c.Session }

// RemoveStrokeCommand carries a match key, not necessarily a stroke found in
// the log.
type RemoveStrokeCommand struct {
	Session string
	Stroke  Stroke
}

func (c RemoveStrokeCommand) SessionID() string { return c.Session }

type ClearBoardCommand struct {
	Session string
}

func (c ClearBoardCommand) SessionID() string { return c.Session }
