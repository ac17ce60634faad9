package policy

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pageflow/internal/logging"
)

// ErrNoSplitFunction is returned when a script defines no split_point
// function.
var ErrNoSplitFunction = errors.New("script does not define split_point")

// splitFunctionName is the global the script must define.
const splitFunctionName = "split_point"

// LuaPolicy runs a user-supplied Lua script to pick split points. The
// script must define a global function split_point(n) returning the node
// count to keep. Any script failure or out-of-range result falls back to
// the built-in rule; a bad script can slow pagination down but never break
// it.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes calls so
// a single LuaPolicy can be shared between the orchestrator and the offload
// worker.
type LuaPolicy struct {
	mu       sync.Mutex
	state    *lua.LState
	fallback SplitPolicy
	log      *logging.Logger
	closed   bool
}

// NewLuaPolicy compiles script and verifies it defines split_point. The
// state is sandboxed: only the base, table, and math libraries are opened.
func NewLuaPolicy(script string, log *logging.Logger) (*LuaPolicy, error) {
	if log == nil {
		log = logging.Null
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(open.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(open.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("opening lua library %s: %w", open.name, err)
		}
	}

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading split policy script: %w", err)
	}

	if L.GetGlobal(splitFunctionName).Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoSplitFunction
	}

	return &LuaPolicy{
		state:    L,
		fallback: Default{},
		log:      log.WithComponent("policy"),
	}, nil
}

// SplitPoint calls the script's split_point(n). Script errors and
// non-numeric or out-of-range results fall back to the built-in rule.
func (p *LuaPolicy) SplitPoint(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.fallback.SplitPoint(n)
	}

	fn := p.state.GetGlobal(splitFunctionName)
	if err := p.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(n)); err != nil {
		p.log.Warn("split policy script failed, using default: %v", err)
		return p.fallback.SplitPoint(n)
	}

	ret := p.state.Get(-1)
	p.state.Pop(1)

	num, ok := ret.(lua.LNumber)
	if !ok {
		p.log.Warn("split policy returned %s, using default", ret.Type())
		return p.fallback.SplitPoint(n)
	}

	return Clamp(int(num), n)
}

// Close releases the Lua state. Subsequent calls use the built-in rule.
func (p *LuaPolicy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.state.Close()
}
