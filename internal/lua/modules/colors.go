package modules

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/colorspace"
	"github.com/dokzlo13/colorname/internal/deltae"
	"github.com/dokzlo13/colorname/internal/resolve"
	"github.com/dokzlo13/colorname/internal/smarthome"
)

// ColorsModule exposes catalog lookups and name resolution to Lua
type ColorsModule struct {
	catalogs *catalog.Registry
	resolver *resolve.Resolver
	invoker  *smarthome.Invoker
	reload   func() error
}

// NewColorsModule creates a new colors module. reload may be nil.
func NewColorsModule(catalogs *catalog.Registry, resolver *resolve.Resolver, invoker *smarthome.Invoker, reload func() error) *ColorsModule {
	return &ColorsModule{
		catalogs: catalogs,
		resolver: resolver,
		invoker:  invoker,
		reload:   reload,
	}
}

// Loader is the module loader for Lua
func (m *ColorsModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "resolve", L.NewFunction(m.resolveColor))
	L.SetField(mod, "resolve_temperature", L.NewFunction(m.resolveTemperature))
	L.SetField(mod, "options", L.NewFunction(m.options))
	L.SetField(mod, "temperatures", L.NewFunction(m.temperatures))
	L.SetField(mod, "label", L.NewFunction(m.label))
	L.SetField(mod, "lab", L.NewFunction(m.lab))
	L.SetField(mod, "delta_e", L.NewFunction(m.deltaE))
	L.SetField(mod, "apply", L.NewFunction(m.apply))
	L.SetField(mod, "reload", L.NewFunction(m.reloadCatalogs))

	L.Push(mod)
	return 1
}

// pushResult pushes id or nil, plus an error message when err is set.
func pushResult(L *lua.LState, id string, ok bool, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(id))
	return 1
}

// resolve(input) -> identifier | nil, err?
func (m *ColorsModule) resolveColor(L *lua.LState) int {
	input := L.CheckString(1)
	id, ok, err := m.resolver.ResolveColorName(m.catalogs.Colors(), input)
	return pushResult(L, id, ok, err)
}

// resolve_temperature(kelvin | name | hex) -> identifier | nil, err?
func (m *ColorsModule) resolveTemperature(L *lua.LState) int {
	c := m.catalogs.Temperatures()
	switch v := L.Get(1).(type) {
	case lua.LNumber:
		id, ok, err := m.resolver.ResolveTemperatureKelvin(c, float64(v))
		return pushResult(L, id, ok, err)
	case lua.LString:
		id, ok, err := m.resolver.ResolveTemperatureName(c, string(v))
		return pushResult(L, id, ok, err)
	default:
		L.ArgError(1, "number or string expected")
		return 0
	}
}

func optionsTable(L *lua.LState, c *catalog.Catalog) *lua.LTable {
	tbl := L.NewTable()
	for i, opt := range c.Options() {
		row := L.NewTable()
		L.SetField(row, "id", lua.LString(opt.ID))
		L.SetField(row, "label", lua.LString(opt.Label))
		if opt.Known != nil {
			switch c.Kind() {
			case catalog.KindColor:
				L.SetField(row, "hex", lua.LString(opt.Known.Hex))
			case catalog.KindTemperature:
				L.SetField(row, "kelvin", lua.LNumber(opt.Known.Kelvin))
			}
		}
		tbl.RawSetInt(i+1, row)
	}
	return tbl
}

// options() -> array of {id, label, hex?} in catalog order
func (m *ColorsModule) options(L *lua.LState) int {
	L.Push(optionsTable(L, m.catalogs.Colors()))
	return 1
}

// temperatures() -> array of {id, label, kelvin?} in catalog order
func (m *ColorsModule) temperatures(L *lua.LState) int {
	L.Push(optionsTable(L, m.catalogs.Temperatures()))
	return 1
}

// label(id) -> label | nil, searching colours then temperatures
func (m *ColorsModule) label(L *lua.LState) int {
	id := L.CheckString(1)
	for _, c := range []*catalog.Catalog{m.catalogs.Colors(), m.catalogs.Temperatures()} {
		if label, ok := c.Label(id); ok {
			L.Push(lua.LString(label))
			return 1
		}
	}
	L.Push(lua.LNil)
	return 1
}

// lab(hex) -> {l, a, b} | nil, err
func (m *ColorsModule) lab(L *lua.LState) int {
	lab, err := colorspace.HexToLab(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(labTable(L, lab))
	return 1
}

func labTable(L *lua.LState, lab colorspace.Lab) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "l", lua.LNumber(lab.L))
	L.SetField(tbl, "a", lua.LNumber(lab.A))
	L.SetField(tbl, "b", lua.LNumber(lab.B))
	return tbl
}

// delta_e(hex1, hex2) -> number | nil, err
// Uses the configured weights.
func (m *ColorsModule) deltaE(L *lua.LState) int {
	a, err := colorspace.HexToLab(L.CheckString(1))
	if err == nil {
		var b colorspace.Lab
		if b, err = colorspace.HexToLab(L.CheckString(2)); err == nil {
			L.Push(lua.LNumber(deltae.CIEDE2000Weighted(a, b, m.resolver.Weights)))
			return 1
		}
	}
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

// apply({{entity=, action=, value=, scale=}, ...}) -> array of {entity, action, parameters?, error?}
// Result i always belongs to input row i; rows that are not tables fail with an error.
func (m *ColorsModule) apply(L *lua.LState) int {
	input := L.CheckTable(1)
	n := input.MaxN()

	results := make([]smarthome.ActionResult, n)
	var (
		reqs []smarthome.ActionRequest
		at   []int
	)
	for i := 1; i <= n; i++ {
		v := input.RawGetInt(i)
		tbl, ok := v.(*lua.LTable)
		if !ok {
			results[i-1].Err = fmt.Errorf("%w: request %d is a %s, not a table", smarthome.ErrInvalidValue, i, v.Type())
			continue
		}
		fields := LuaTableToMap(tbl)
		req := smarthome.ActionRequest{Value: fields["value"]}
		req.Entity, _ = fields["entity"].(string)
		req.Action, _ = fields["action"].(string)
		req.Scale, _ = fields["scale"].(string)
		reqs = append(reqs, req)
		at = append(at, i-1)
	}

	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for j, res := range m.invoker.Resolve(ctx, reqs) {
		results[at[j]] = res
	}

	out := L.NewTable()
	for i, res := range results {
		row := L.NewTable()
		L.SetField(row, "entity", lua.LString(res.Entity))
		L.SetField(row, "action", lua.LString(res.Action))
		if res.Err != nil {
			L.SetField(row, "error", lua.LString(res.Err.Error()))
		} else {
			L.SetField(row, "parameters", MapToLuaTable(L, res.Parameters))
		}
		out.RawSetInt(i+1, row)
	}
	L.Push(out)
	return 1
}

// reload() -> true | nil, err
func (m *ColorsModule) reloadCatalogs(L *lua.LState) int {
	if m.reload == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("reload not available"))
		return 2
	}
	if err := m.reload(); err != nil {
		log.Error().Err(err).Msg("Catalog reload from Lua failed")
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
