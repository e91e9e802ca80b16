package builtins

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/skyparse/internal/globber"
)

// NewGlobFunction builds the glob(include, [exclude], [exclude_dirs])
// function over g. Directories are excluded from results unless the
// third argument is false. Results are a set of package-relative
// paths.
func NewGlobFunction(g globber.Globber) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "include", Type: cty.List(cty.String)},
		},
		VarParam: &function.Parameter{Name: "options", Type: cty.DynamicPseudoType},
		Type:     function.StaticReturnType(cty.Set(cty.String)),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			include, err := stringSlice(args[0])
			if err != nil {
				return cty.NilVal, fmt.Errorf("glob include: %w", err)
			}
			var exclude []string
			excludeDirectories := true

			rest := args[1:]
			if len(rest) > 2 {
				return cty.NilVal, fmt.Errorf("glob takes at most 3 arguments, got %d", len(args))
			}
			if len(rest) >= 1 {
				exclude, err = stringSlice(rest[0])
				if err != nil {
					return cty.NilVal, fmt.Errorf("glob exclude: %w", err)
				}
			}
			if len(rest) == 2 {
				if rest[1].Type() != cty.Bool || rest[1].IsNull() {
					return cty.NilVal, fmt.Errorf("glob exclude_dirs must be a bool")
				}
				excludeDirectories = rest[1].True()
			}

			paths, err := g.Run(include, exclude, excludeDirectories)
			if err != nil {
				return cty.NilVal, err
			}
			if len(paths) == 0 {
				return cty.SetValEmpty(cty.String), nil
			}
			vals := make([]cty.Value, len(paths))
			for i, p := range paths {
				vals[i] = cty.StringVal(p)
			}
			return cty.SetVal(vals), nil
		},
	})
}

// NewReadConfigFunction builds read_config(section, field, [default])
// over the raw configuration table. Every call is recorded against
// rec, hit or miss. A missing key yields the default, or a null string
// when no default is given.
func NewReadConfigFunction(raw map[string]map[string]string, rec Recorder) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "section", Type: cty.String},
			{Name: "field", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String, AllowNull: true},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			if len(args) > 3 {
				return cty.NilVal, fmt.Errorf("read_config takes at most 3 arguments, got %d", len(args))
			}
			section := args[0].AsString()
			field := args[1].AsString()
			rec.RecordConfigRead(section, field)

			if value, ok := raw[section][field]; ok {
				return cty.StringVal(value), nil
			}
			if len(args) == 3 {
				return args[2], nil
			}
			return cty.NullVal(cty.String), nil
		},
	})
}

func stringSlice(val cty.Value) ([]string, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of strings, got %s", val.Type().FriendlyName())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String || elem.IsNull() {
			return nil, fmt.Errorf("expected a list of strings, got element of type %s",
				elem.Type().FriendlyName())
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
