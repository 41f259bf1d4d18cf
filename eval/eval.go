package eval

import (
	"context"
	"strconv"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/watlink/watlink/errors"
	"github.com/watlink/watlink/sexp"
)

// Value evaluates a constant expression of the given result type (i32,
// i64, f32 or f64) and returns its literal spelling. The expression is
// compiled into a one-function wasm module together with the prelude
// globals and executed in a throwaway wazero interpreter, so the result
// matches wasm arithmetic exactly (wrapping, NaN handling, rounding).
func Value(typ string, expr *sexp.Node, globals []*sexp.Node) (string, error) {
	vt, ok := valTypeOf(typ)
	if !ok {
		return "", errors.InvalidForm(errors.PhaseEval, "unknown constexpr type %q", typ)
	}

	bin, err := compileModule(vt, expr, globals)
	if err != nil {
		return "", err
	}
	Logger().Debug("constexpr module compiled",
		zap.String("type", typ),
		zap.Int("bytes", len(bin)))

	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		return "", errors.EvalFailed("instantiate evaluation module", err)
	}
	res, err := mod.ExportedFunction("main").Call(ctx)
	if err != nil {
		return "", errors.EvalFailed("evaluate expression", err)
	}
	if len(res) != 1 {
		return "", errors.EvalFailed("expression produced no value", nil)
	}

	switch vt {
	case typeI32:
		return strconv.FormatInt(int64(int32(uint32(res[0]))), 10), nil
	case typeI64:
		return strconv.FormatInt(int64(res[0]), 10), nil
	case typeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(res[0])), 'g', -1, 32), nil
	default:
		return strconv.FormatFloat(api.DecodeF64(res[0]), 'g', -1, 64), nil
	}
}
