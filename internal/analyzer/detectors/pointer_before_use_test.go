package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardcheck/internal/config"
	"guardcheck/internal/models"
)

func runPointerCheck(t *testing.T, src string, containers ...string) []Diagnostic {
	t.Helper()
	_, scope := onlyScope(t, src)
	return NewPointerBeforeUseDetector(containers, nil).Run(scope)
}

func TestUnguardedDereference(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    char *p = get();
    *p = 'a';
}
`)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, models.IssueMissingNullCheck, d.Category)
	assert.Equal(t, models.SeverityError, d.Severity)
	assert.Equal(t, models.CWEPoorCodeQuality, d.CWE)
	assert.Equal(t, "p may cause segment fault", d.Message)
	assert.Equal(t, 4, d.Anchor.Line())
	assert.Equal(t, "p", d.Anchor.Str())
}

func TestGuardForms(t *testing.T) {
	guards := []string{
		"if (!p) return;",
		"if (p == NULL) return;",
		"if (NULL == p) return;",
		"if (p != NULL) {}",
		"if (nullptr != p) {}",
		"if (p == nullptr) return;",
		"assert(!p);",
	}
	for _, guard := range guards {
		t.Run(guard, func(t *testing.T) {
			diags := runPointerCheck(t, "void f() {\n    Node *p = get();\n    "+guard+"\n    p->x = 1;\n}\n")
			assert.Empty(t, diags)
		})
	}
}

func TestGuardAfterUseDoesNotCount(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *p = get();
    p->x = 1;
    if (!p) return;
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Anchor.Line())
}

func TestTruthinessIsNotAGuard(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *p = get();
    if (p) {
        p->x = 1;
    }
}
`)
	assert.Len(t, diags, 1)
}

func TestNonDereferencesAreIgnored(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *p = get();
    Node *q = p;
    use(p);
    use(&p->x);
    int n = sizeof(*p);
}
`)
	assert.Empty(t, diags)
}

func TestOnlyLocalPointers(t *testing.T) {
	diags := runPointerCheck(t, `
void f(Node *arg, Node obj) {
    arg->x = 1;
    obj.x = 2;
    int n = 3;
}
`)
	assert.Empty(t, diags)
}

func TestContainerTypesAreSkipped(t *testing.T) {
	src := `
void f() {
    std::vector<int> *v = get();
    v->push_back(1);
}
`
	assert.Len(t, runPointerCheck(t, src), 1)
	assert.Empty(t, runPointerCheck(t, src, "vector"))

	cfg := config.DefaultConfig()
	_, scope := onlyScope(t, src)
	assert.Empty(t, NewPointerBeforeUseDetectorWithConfig(cfg).Run(scope))
}

func TestChainReportsSecondHop(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *a = get();
    if (!a) return;
    if (a->b) {
        use(a->b->c);
    }
}
`)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, models.IssueMissingNullCheck, d.Category)
	assert.Contains(t, d.Message, "a->b->c")
	assert.Equal(t, "a->b may cause segment fault in a->b->c", d.Message)
	assert.Equal(t, "a", d.Anchor.Str())
	assert.Equal(t, 6, d.Anchor.Line())
}

func TestGuardedChain(t *testing.T) {
	guards := []string{
		"if (!a->b) return;",
		"if (a->b == NULL) return;",
		"if (nullptr != a->b) {}",
	}
	for _, guard := range guards {
		t.Run(guard, func(t *testing.T) {
			diags := runPointerCheck(t, "void f() {\n    Node *a = get();\n    if (!a) return;\n    "+guard+"\n    a->b->c = 1;\n}\n")
			assert.Empty(t, diags)
		})
	}
}

func TestNegatedLongerChainIsNotAGuard(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *a = get();
    if (!a) return;
    if (!a->b->c) return;
    a->b->d = 1;
}
`)
	// both a->b->c and a->b->d read through an unchecked a->b
	assert.Len(t, diags, 2)
	for _, d := range diags {
		assert.Contains(t, d.Message, "a->b may cause segment fault")
	}
}

func TestMethodChain(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *a = get();
    if (!a) return;
    a->next()->run();
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "a->next() may cause segment fault in a->next()->run", diags[0].Message)
}

func TestPointerCheckIsIdempotent(t *testing.T) {
	_, scope := onlyScope(t, `
void f() {
    Node *a = get();
    char *p = a->name;
    a->b->c = *p;
}
`)
	d := NewPointerBeforeUseDetector(nil, nil)
	first := d.Run(scope)
	second := d.Run(scope)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFunctionPointerCall(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    void (*fp)(int) = get();
    fp(1);
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "fp may cause segment fault", diags[0].Message)
	assert.Equal(t, 4, diags[0].Anchor.Line())

	assert.Empty(t, runPointerCheck(t, `
void f() {
    void (*fp)(int) = get();
    if (fp == NULL) return;
    fp(1);
}
`))
}

func TestSelfReassignmentReportedOnce(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    Node *q = get();
    q = q->next;
    q = q->next;
}
`)
	require.Len(t, diags, 2)
	assert.Equal(t, "q may cause segment fault", diags[0].Message)
	assert.Equal(t, 4, diags[0].Anchor.Line())
	assert.Equal(t, 5, diags[1].Anchor.Line())
	assert.Equal(t, "=", diags[0].Anchor.Next().Str(), "reported at the assigned q")
}

func TestStringAndStreamUses(t *testing.T) {
	tests := []struct {
		name string
		stmt string
	}{
		{"constructed string", "std::string s(p);"},
		{"stream variable", "std::ostringstream os;\n    os << p;"},
		{"console stream", "std::cout << p;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runPointerCheck(t, "void f() {\n    char *p = get();\n    "+tt.stmt+"\n}\n")
			require.Len(t, diags, 1)
			assert.Equal(t, "p may cause segment fault", diags[0].Message)
		})
	}
}

func TestArrayOfPointersIsNotACandidate(t *testing.T) {
	diags := runPointerCheck(t, `
void f() {
    int *arr[4];
    arr[0] = 0;
    use(arr[1]);
}
`)
	assert.Empty(t, diags)
}
