// Package analysis resolves the signatures of every method found in class
// files, archives and Java sources.
package analysis

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/javadoc"
	"github.com/dhamidi/docsig/metrics"
	"github.com/dhamidi/docsig/signature"
	"github.com/dhamidi/docsig/source"
)

var log = commonlog.GetLogger("docsig.analysis")

var ErrUnsupportedInput = errors.New("unsupported input, expected .class, .jar, .zip or .java")

const DefaultConcurrency = 8

// Result is the outcome of resolving one method. Exactly one of Spec and Err
// is meaningful.
type Result struct {
	Class      string
	Method     string
	Descriptor string
	Signature  string
	File       string
	Line       int
	Parameters []java.Parameter
	// Throws and Deprecated are what the declaration itself states,
	// regardless of documentation.
	Throws     []string
	Deprecated bool
	// Doc is the raw doc comment, "" when there is none.
	Doc        string
	Documented bool
	Spec       signature.MethodSignatureSpec
	Err        error
}

func (r *Result) Unresolvable() bool {
	return errors.Is(r.Err, signature.ErrUnresolvableDocBlock)
}

// Analyzer resolves methods against documentation found in Index. All
// fields are optional.
type Analyzer struct {
	Index   *index.Index
	Parser  signature.DocCommentParser
	Scanner *source.Scanner
	Policy  java.InternalPolicy

	Concurrency int
	// FailFast aborts the run at the first method that fails to resolve.
	FailFast bool
	// NativeFallback fills undocumented parameter types from declarations.
	NativeFallback bool

	Metrics *metrics.Metrics
}

func (a *Analyzer) parser() signature.DocCommentParser {
	if a.Parser != nil {
		return a.Parser
	}
	if a.Index != nil {
		return javadoc.NewParser(a.Index)
	}
	return javadoc.NewParser(nil)
}

// Analyze resolves every method in paths. Methods whose documentation cannot
// be resolved are reported through Result.Err unless FailFast is set, in
// which case the first failure is returned.
func (a *Analyzer) Analyze(ctx context.Context, paths []string) ([]Result, error) {
	start := time.Now()
	defer func() { a.Metrics.AnalysisFinished(time.Since(start)) }()

	inputs, err := Inputs(paths)
	if err != nil {
		return nil, err
	}

	// Source inputs go first so the index knows them before class files
	// look up their documentation.
	slices.SortStableFunc(inputs, func(x, y string) int {
		return cmp.Compare(boolRank(KindOf(x) != InputSource), boolRank(KindOf(y) != InputSource))
	})

	var methods []java.Method
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := a.methods(ctx, path)
		if err != nil {
			return nil, err
		}
		methods = append(methods, found...)
	}

	results, err := a.Resolve(ctx, methods)
	if err != nil {
		return nil, err
	}
	log.Infof("resolved %d methods from %d inputs", len(results), len(inputs))
	return results, nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Resolve resolves methods in parallel and returns their results sorted by
// class, method and descriptor.
func (a *Analyzer) Resolve(ctx context.Context, methods []java.Method) ([]Result, error) {
	parser := a.parser()
	results := make([]Result, len(methods))

	g, ctx := errgroup.WithContext(ctx)
	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)

	for i, m := range methods {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.resolve(m, parser)
			if a.FailFast && results[i].Err != nil {
				return results[i].Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(x, y Result) int {
		return cmp.Or(
			cmp.Compare(x.Class, y.Class),
			cmp.Compare(x.Method, y.Method),
			cmp.Compare(x.Line, y.Line),
			cmp.Compare(x.Descriptor, y.Descriptor),
		)
	})
	return results, nil
}

func (a *Analyzer) resolve(m java.Method, parser signature.DocCommentParser) Result {
	r := Result{
		Class:      m.DeclaringClassName(),
		Method:     m.Name(),
		Descriptor: m.Descriptor(),
		Signature:  java.Signature(m),
		File:       m.FileName().OrElse(""),
		Line:       m.Line(),
		Parameters: m.Parameters(),
		Throws:     m.Exceptions(),
		Deprecated: m.IsDeprecated(),
		Doc:        m.DocComment().OrElse(""),
		Documented: m.DocComment().IsPresent(),
	}

	spec, err := signature.ResolveMethod(m, parser)
	if err != nil {
		r.Err = err
		if r.Unresolvable() {
			log.Warningf("%s", err)
			a.Metrics.Resolution(metrics.OutcomeUnresolvable)
		} else {
			log.Errorf("%s#%s: %s", r.Class, r.Method, err)
			a.Metrics.Resolution(metrics.OutcomeError)
		}
		return r
	}

	if r.Documented {
		a.Metrics.Resolution(metrics.OutcomeResolved)
		a.Metrics.DocumentedParameters(len(spec.ParameterTypes))
	} else {
		a.Metrics.Resolution(metrics.OutcomeNativeOnly)
	}
	if a.NativeFallback {
		spec.ParameterTypes = NativeParameterFallback(spec, r.Parameters)
	}
	r.Spec = spec
	return r
}

// NativeParameterFallback returns the parameter types of spec with every
// named parameter that has no documented type filled in from its declared
// type. spec is not modified.
func NativeParameterFallback(spec signature.MethodSignatureSpec, params []java.Parameter) map[string]signature.Type {
	out := make(map[string]signature.Type, len(params))
	maps.Copy(out, spec.ParameterTypes)
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if _, ok := out[p.Name]; !ok {
			out[p.Name] = p.Type
		}
	}
	return out
}
