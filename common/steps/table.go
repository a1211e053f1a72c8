package steps

import (
	"context"
	"reflect"
	"regexp"

	errors "github.com/pkg/errors"
)

var (
	// ErrInvalidStep is returned when a step definition does not match its handler.
	ErrInvalidStep = errors.New("invalid step definition")
	// ErrMissingEnv is returned when a step names an unset environment variable.
	ErrMissingEnv = errors.New("environment variable needs to be set")
	// ErrNoScenario is returned when a step runs outside a scenario.
	ErrNoScenario = errors.New("no scenario is running")
)

// ParamKind is the declared type of a step parameter.
type ParamKind int

const (
	String ParamKind = iota
	Int
)

func (k ParamKind) kind() reflect.Kind {
	if k == Int {
		return reflect.Int
	}
	return reflect.String
}

// StepDef binds a step pattern to its handler. Every capture group of Pattern
// is passed to Handler as one parameter of the declared kind. Handler may take
// a leading context.Context and must return only an error.
type StepDef struct {
	Pattern string
	Params  []ParamKind
	Handler interface{}
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func (d StepDef) validate() error {
	re, err := regexp.Compile(d.Pattern)
	if err != nil {
		return errors.Wrapf(ErrInvalidStep, "%q does not compile: %v", d.Pattern, err)
	}
	fn := reflect.TypeOf(d.Handler)
	if fn == nil || fn.Kind() != reflect.Func {
		return errors.Wrapf(ErrInvalidStep, "%q: handler is not a function", d.Pattern)
	}
	if fn.IsVariadic() {
		return errors.Wrapf(ErrInvalidStep, "%q: handler is variadic", d.Pattern)
	}
	if fn.NumOut() != 1 || fn.Out(0) != errorType {
		return errors.Wrapf(ErrInvalidStep, "%q: handler must return only an error", d.Pattern)
	}

	offset := 0
	if fn.NumIn() > 0 && fn.In(0) == contextType {
		offset = 1
	}
	params := fn.NumIn() - offset
	if re.NumSubexp() != params {
		return errors.Wrapf(ErrInvalidStep, "%q has %d capture groups, handler takes %d parameters",
			d.Pattern, re.NumSubexp(), params)
	}
	if len(d.Params) != params {
		return errors.Wrapf(ErrInvalidStep, "%q declares %d parameters, handler takes %d",
			d.Pattern, len(d.Params), params)
	}
	for i, p := range d.Params {
		if got := fn.In(i + offset).Kind(); got != p.kind() {
			return errors.Wrapf(ErrInvalidStep, "%q: parameter %d is %s, declared %s",
				d.Pattern, i, got, p.kind())
		}
	}
	return nil
}

// Validate checks every definition and that no pattern is bound twice.
func Validate(defs []StepDef) error {
	seen := map[string]bool{}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return err
		}
		if seen[d.Pattern] {
			return errors.Wrapf(ErrInvalidStep, "%q is defined twice", d.Pattern)
		}
		seen[d.Pattern] = true
	}
	return nil
}
