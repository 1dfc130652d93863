package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvvmshift/mvvmshift/internal/rules"
	"github.com/mvvmshift/mvvmshift/internal/syntax"
)

func matchDelegate(t *testing.T, doc *syntax.Document, name string) *rules.DelegateCommandProperty {
	t.Helper()
	for _, p := range doc.Root().FindAll(syntax.KindPropertyDeclaration) {
		if p.Field("name").Text() != name {
			continue
		}
		m, ok := rules.MatchDelegateCommand(p)
		require.True(t, ok, "property %q does not match", name)
		return m
	}
	t.Fatalf("no property %q", name)
	return nil
}

func TestPlanDelegateCommand_AdoptForwardedMethod(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _cmd;

    public DelegateCommand DoThingCommand =>
        _cmd ?? (_cmd = new DelegateCommand(x => DoThing(x)));

    private void DoThing(object parameter)
    {
    }
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "DoThingCommand"))
	require.False(t, plan.Empty())

	out, err := Apply(doc, plan)
	require.NoError(t, err)
	assert.Equal(t, `using Mvvm.Annotations;

public class ViewModel
{


    [RelayCommand]
    private void DoThing(object parameter)
    {
    }
}
`, string(out))

	rescan := parseSource(t, string(out))
	assert.Empty(t, (&rules.DelegateCommandRule{}).Check(rescan))
}

func TestPlanDelegateCommand_RenameExecutePair(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _fooCommand;
    private bool _enabled;

    public DelegateCommand FooCommand =>
        _fooCommand ?? (_fooCommand = new DelegateCommand(ExecuteFoo, CanExecuteFoo));

    private void ExecuteFoo(object parameter)
    {
        DoWork();
    }

    private bool CanExecuteFoo()
    {
        return _enabled;
    }
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "FooCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)
	assert.Equal(t, `using Mvvm.Annotations;

public class ViewModel
{
    private bool _enabled;


    [RelayCommand(CanExecute = nameof(_enabled))]
    private void Foo(object parameter)
    {
        DoWork();
    }

}
`, string(out))
}

func TestPlanDelegateCommand_NonTrivialCanExecuteKept(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _fooCommand;
    private bool _a;
    private bool _b;

    public DelegateCommand FooCommand =>
        _fooCommand ?? (_fooCommand = new DelegateCommand(ExecuteFoo, CanExecuteFoo));

    private void ExecuteFoo(object parameter) { }

    private bool CanExecuteFoo()
    {
        return _a && _b;
    }
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "FooCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "[RelayCommand(CanExecute = nameof(CanExecuteFoo))]")
	assert.Contains(t, text, "private bool CanExecuteFoo()", "compound wrapper survives")
	assert.Contains(t, text, "private void Foo(object parameter)")
	assert.NotContains(t, text, "private void ExecuteFoo(")
}

func TestPlanDelegateCommand_Synthesize(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _resetCommand;
    private int _count;

    public DelegateCommand ResetCommand =>
        _resetCommand ?? (_resetCommand = new DelegateCommand(() => _count = 0));
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "ResetCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)
	assert.Equal(t, `using Mvvm.Annotations;

public class ViewModel
{
    private int _count;

    [RelayCommand]
    private void Reset()
    {
        _count = 0;
    }
}
`, string(out))
}

func TestPlanDelegateCommand_SynthesizeAsyncWithParameter(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _sendCommand;

    public DelegateCommand SendCommand =>
        _sendCommand ?? (_sendCommand = new DelegateCommand(async x => await Send(x, true)));
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "SendCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "private async Task SendAsync(object x)")
	assert.Contains(t, text, "await Send(x, true);")
	assert.NotContains(t, text, "_sendCommand")
}

func TestPlanDelegateCommand_SynthesizeTypedParameter(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _printCommand;

    public DelegateCommand PrintCommand =>
        _printCommand ?? (_printCommand = new DelegateCommand((string text) => Render(text, 2)));
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "PrintCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)

	assert.Contains(t, string(out), "private void Print(string text)")
	assert.Contains(t, string(out), "Render(text, 2);")
}

func TestPlanDelegateCommand_CommentsMoveToSynthesizedMethod(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _clearCommand;

    // Clears the current selection.
    public DelegateCommand ClearCommand =>
        _clearCommand ?? (_clearCommand = new DelegateCommand(() => _selection = null));

    private object _selection;
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "ClearCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "    // Clears the current selection.\n    [RelayCommand]\n")
	assert.Contains(t, text, "private void Clear()")
}

func TestPlanDelegateCommand_DeclinesWithoutHandler(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    public DelegateCommand BareCommand { get; set; }
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "BareCommand"))
	assert.True(t, plan.Empty(), "no handler to promote: the fix declines")

	out, err := Apply(doc, plan)
	require.NoError(t, err)
	assert.Equal(t, string(doc.Source), string(out))
}

func TestPlanDelegateCommand_AdoptKeepsCanExecuteWrapper(t *testing.T) {
	doc := parseSource(t, `public class ViewModel
{
    private DelegateCommand _runCommand;
    private bool _ready;

    public DelegateCommand RunCommand =>
        _runCommand ?? (_runCommand = new DelegateCommand(() => Run(), CanExecuteRun));

    private void Run() { }

    private bool CanExecuteRun()
    {
        return _ready;
    }
}
`)

	plan := PlanDelegateCommand(doc, matchDelegate(t, doc, "RunCommand"))
	out, err := Apply(doc, plan)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "[RelayCommand(CanExecute = nameof(CanExecuteRun))]")
	assert.Contains(t, text, "private bool CanExecuteRun()",
		"adoption never removes the wrapper, trivial or not")
}
