//go:build ruleguard

// Package gorules holds project lint rules for golangci-lint via ruleguard.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SharedHTTPClient flags requests that bypass internal/httpclient, which
// carries the rate limiter, the User-Agent and the request timeout.
func SharedHTTPClient(m dsl.Matcher) {
	m.Match(
		`http.Get($*_)`,
		`http.Head($*_)`,
		`http.DefaultClient.Do($*_)`,
	).
		Where(!m.File().PkgPath.Matches(`/internal/httpclient$`)).
		Report("use internal/httpclient so feed requests share the rate limiter and timeout")
}

// ContextCommand flags external commands started without a context.
func ContextCommand(m dsl.Matcher) {
	m.Match(`exec.Command($*args)`).
		Report("use exec.CommandContext, or a command.Runner, so commands stop on cancellation")
}

// PlainErrors flags stdlib error constructors outside the errors package.
// Builder errors carry the component and category used for telemetry.
func PlainErrors(m dsl.Matcher) {
	m.Import("errors")
	m.Match(`errors.New($msg)`).
		Where(m["msg"].Type.Is("string") &&
			!m.File().PkgPath.Matches(`/internal/errors$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("use the internal/errors builder with a Component and Category")
}

// TestContext flags context.Background in tests.
func TestContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.Context() in tests")
}

// DateTimeLayouts flags magic layouts that have named constants.
func DateTimeLayouts(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02 15:04:05")`).
		Report("use time.DateTime").
		Suggest(`$t.Format(time.DateTime)`)
	m.Match(`$t.Format("15:04:05")`).
		Report("use time.TimeOnly").
		Suggest(`$t.Format(time.TimeOnly)`)
}
