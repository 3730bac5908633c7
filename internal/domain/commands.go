package domain

import "strings"

// CommandTable maps command names to actions. It is built once at startup
// and never mutated afterwards.
type CommandTable struct {
	actions map[CommandName]Action
	order   []CommandName
}

func NewCommandTable(cfg *RunConfig) *CommandTable {
	pm := cfg.PackageManager
	if pm == "" {
		pm = DefaultPackageManager
	}
	scripts := cfg.Scripts
	defaults := DefaultScripts()
	if scripts.Start == "" {
		scripts.Start = defaults.Start
	}
	if scripts.Server == "" {
		scripts.Server = defaults.Server
	}
	if scripts.Client == "" {
		scripts.Client = defaults.Client
	}

	t := &CommandTable{actions: make(map[CommandName]Action)}
	t.add(Action{
		Name:        CmdStart,
		Kind:        ActionRun,
		Invocation:  []string{pm, "run", scripts.Start},
		Description: "Start the monitor (client + server)",
	})
	t.add(Action{
		Name:        CmdServer,
		Kind:        ActionRun,
		Invocation:  []string{pm, "run", scripts.Server},
		Description: "Start the server only",
	})
	t.add(Action{
		Name:        CmdClient,
		Kind:        ActionRun,
		Invocation:  []string{pm, "run", scripts.Client},
		Description: "Start the client only",
	})
	t.add(Action{Name: CmdStop, Kind: ActionStop, Description: "Stop all services"})
	t.add(Action{Name: CmdConfigure, Kind: ActionConfigure, Description: "Write server/client port settings"})
	t.add(Action{Name: CmdHelp, Kind: ActionHelp, Description: "Show this help"})
	return t
}

func (t *CommandTable) add(a Action) {
	t.actions[a.Name] = a
	t.order = append(t.order, a.Name)
}

// Resolve looks up a command name case-insensitively. An empty name selects
// start. The second result is false when the name is unknown, in which case
// the help action is returned.
func (t *CommandTable) Resolve(name string) (Action, bool) {
	key := CommandName(strings.ToLower(strings.TrimSpace(name)))
	if key == "" {
		key = CmdStart
	}
	if a, ok := t.actions[key]; ok {
		return a, true
	}
	return t.actions[CmdHelp], false
}

// Actions returns the table in definition order.
func (t *CommandTable) Actions() []Action {
	out := make([]Action, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.actions[name])
	}
	return out
}
