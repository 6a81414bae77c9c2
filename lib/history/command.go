package history

// Command exposes one history action together with its enabled state.
type Command struct {
	name       string
	canExecute func() bool
	execute    func() error

	listeners []listener
	nextID    int
	// published is the enabled state listeners were last told about.
	published bool
}

type listener struct {
	id int
	fn func()
}

func newCommand(name string, canExecute func() bool, execute func() error) *Command {
	return &Command{
		name:       name,
		canExecute: canExecute,
		execute:    execute,
	}
}

// Name returns "undo" or "redo".
func (c *Command) Name() string {
	return c.name
}

// CanExecute reports whether Execute would do anything. It has no side
// effects.
func (c *Command) CanExecute() bool {
	return c.canExecute()
}

// Execute runs the command. Executing a disabled command is a no-op.
func (c *Command) Execute() error {
	return c.execute()
}

// OnCanExecuteChanged registers fn to be called whenever the value of
// CanExecute changes. The returned function removes the registration.
func (c *Command) OnCanExecuteChanged(fn func()) func() {
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// publish notifies listeners if the enabled state moved since the last call.
func (c *Command) publish() {
	enabled := c.canExecute()
	if enabled == c.published {
		return
	}
	c.published = enabled
	for _, l := range append([]listener(nil), c.listeners...) {
		l.fn()
	}
}
