package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("dobutsu_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// command wraps a shell command for Lua. The single string argument is
// the rest of the command line; errors come back as "ERROR: ..." so a
// script can keep going.
func command(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.ToString(1)
		sc := getShell(L)
		cmd, err := extractFields(name + " " + lv)
		if err != nil {
			log.Err(err).Msg("error-parsing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := sc.dispatch(cmd, nil)
		if err != nil {
			log.Err(err).Msg("error-executing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
		} else {
			L.Push(lua.LString(r.message))
		}
		// return number of results pushed to stack.
		return 1
	}
}

func Turn(L *lua.LState) int {
	sc := getShell(L)
	st := sc.current()
	if st == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(st.Turn.String()))
	return 1
}

func Outcome(L *lua.LState) int {
	sc := getShell(L)
	st := sc.current()
	if st == nil {
		L.Push(lua.LNil)
		return 1
	}
	text, err := st.Outcome.MarshalText()
	if err != nil {
		log.Err(err).Msg("error-executing-outcome")
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

var luaCommands = []string{"new", "play", "ai", "show", "moves", "undo", "set", "autoplay", "export"}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("dobutsu_shell", lsc)
	for _, c := range luaCommands {
		L.SetGlobal("dobutsu_"+c, L.NewFunction(command(c)))
	}
	L.SetGlobal("dobutsu_turn", L.NewFunction(Turn))
	L.SetGlobal("dobutsu_outcome", L.NewFunction(Outcome))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
