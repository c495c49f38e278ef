// Package randconst is the marker package imported by templates.
//
// A template is a Go file constrained with //go:build randconst. The
// randconst generator turns it into a companion file in which every request
// is replaced by a literal drawn from the operating system's secure random
// source when the generator runs:
//
//	//go:build randconst
//
//	//go:generate randconst generate $GOFILE
//
//	package keys
//
//	import "github.com/teranos/randconst"
//
//	//randconst:random
//	const Salt uint64 = 0
//
//	//randconst:random u128
//	const Wide = 0
//
//	var table = randconst.Random("[u16;4]")
//
// The companion (keys_randconst.go) is built instead of the template, which
// stays excluded from normal builds. Templates are never compiled, so the
// identifiers passed to Random (u8, i64, ...) need not resolve.
package randconst

// Random marks an inline request. Its argument is a request string such as
// "u32" or "[i8;16]", or a bare type name. Calls exist only in templates;
// reaching one at run time means the generator did not run.
func Random(request any) any {
	panic("randconst.Random called at run time: run go generate to produce the companion file")
}
