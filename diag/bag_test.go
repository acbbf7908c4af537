package diag

import (
	"go/token"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(file string, offset, line, col int) token.Position {
	return token.Position{Filename: file, Offset: offset, Line: line, Column: col}
}

func TestBag_Limit(t *testing.T) {
	b := NewBag(2)
	assert.True(t, b.Add(Diagnostic{Severity: SevWarning}))
	assert.True(t, b.Add(Diagnostic{Severity: SevWarning}))
	assert.False(t, b.Add(Diagnostic{Severity: SevError}))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, b.Dropped())
	assert.True(t, b.HasWarnings())
	assert.False(t, b.HasErrors())
}

func TestBag_UnlimitedWhenNotPositive(t *testing.T) {
	assert.Equal(t, 65535, NewBag(0).Cap())
	assert.Equal(t, 65535, NewBag(-1).Cap())
	assert.Equal(t, 65535, NewBag(1<<20).Cap())
}

func TestBag_Sort(t *testing.T) {
	b := NewBag(10)
	b.Report(Diagnostic{Code: DocFileIO, Severity: SevError, Primary: At(pos("b.go", 10, 2, 1))})
	b.Report(Diagnostic{Code: DocFileSyntax, Severity: SevError, Primary: At(pos("a.go", 50, 4, 1))})
	b.Report(Diagnostic{Code: AnnotationMisplaced, Severity: SevWarning, Primary: At(pos("a.go", 5, 1, 6))})
	b.Report(Diagnostic{Code: DocFilePath, Severity: SevError, Primary: At(pos("a.go", 5, 1, 6))})
	b.Sort()

	var codes []Code
	for _, d := range b.Items() {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []Code{DocFilePath, AnnotationMisplaced, DocFileSyntax, DocFileIO}, codes)
}

func TestBag_Concurrent(t *testing.T) {
	b := NewBag(1000)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				ReportError(b, DocFileIO, Span{}, "boom").Emit()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 200, b.Len())
	assert.True(t, b.HasErrors())
}

func TestReportBuilder_EmitsOnce(t *testing.T) {
	var got []Diagnostic
	r := ReporterFunc(func(d Diagnostic) { got = append(got, d) })

	sp := SpanOf(pos("a.go", 3, 1, 4), pos("a.go", 9, 1, 10))
	b := ReportError(r, DocFileIO, sp, "could not read").WithNote(Span{}, "resolved to /x")
	b.Emit()
	b.Emit()

	require.Len(t, got, 1)
	assert.Equal(t, SevError, got[0].Severity)
	assert.Equal(t, sp, got[0].Primary)
	assert.Equal(t, []Note{{Msg: "resolved to /x"}}, got[0].Notes)
}

func TestSpan(t *testing.T) {
	outer := SpanOf(pos("a.go", 10, 2, 1), pos("a.go", 40, 2, 31))
	inner := SpanOf(pos("a.go", 15, 2, 6), pos("a.go", 20, 2, 11))
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.Equal(t, "a.go:2:6-11", inner.String())
	assert.Equal(t, "-", Span{}.String())
}
