package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"gtodo/internal/backend/googletasks"
	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/testutil"
)

// testNow is the fixed "now" of every command test.
var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	return &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
		Clock: clockwork.NewFakeClockAt(testNow),
	}
}

// runCommand is a helper to run a command with FakeService.
// argv holds flags followed by positional arguments.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandContext(t, context.Background(), cmd, svc, argv, quiet)
}

func runCommandContext(t *testing.T, ctx context.Context, cmd commands.Command, svc service.Service, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandConfig(t, ctx, cmd, svc, testConfig(t, quiet), argv)
}

func runCommandConfig(t *testing.T, ctx context.Context, cmd commands.Command, svc service.Service, cfg *config.Config, argv []string) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("failed to parse flags %v: %v", argv, err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(ctx, cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// runRm runs rm on the real clock so its short windows elapse.
func runRm(t *testing.T, ctx context.Context, svc service.Service, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	cfg := testConfig(t, quiet)
	cfg.Clock = nil
	return runCommandConfig(t, ctx, &commands.RmCmd{}, svc, cfg, argv)
}

func tomorrowAt(hour, minute int) time.Time {
	return time.Date(2026, 10, 16, hour, minute, 0, 0, time.UTC)
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "gtodo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_WithTodos(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	svc.AddTodo("Buy eggs", true)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [x] Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Detail(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Call mom", false)
	svc.UpsertTodo(context.Background(), service.Todo{ID: id, Title: "Call mom", Description: "about sunday"})
	svc.AddReminder(id, service.Reminder{At: tomorrowAt(9, 0)})
	svc.AddTodo("Buy milk", true)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.GoldenString(t, "list_detail", stdout)
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no todos\n" {
		t.Errorf("expected 'no todos', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_OpenKeepsPositions(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", true)
	svc.AddTodo("Buy eggs", false)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--open"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "   2  [ ] Buy eggs\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTodosErr = errors.New("database is locked")

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: database is locked\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListCommand_WatchRedrawsOnChange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)

	cmd := &commands.ListCmd{}
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse([]string{"--watch"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out, errOut syncBuffer
	done := make(chan int)
	go func() {
		done <- cmd.Run(ctx, testConfig(t, false), svc, nil, &out, &errOut)
	}()

	waitFor(t, func() bool { return strings.Contains(out.String(), "Buy milk") })
	svc.AddTodo("Call mom", false)
	waitFor(t, func() bool { return strings.Contains(out.String(), "   2  [ ] Call mom") })

	cancel()
	if code := <-done; code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if n := strings.Count(out.String(), "2026-10-15 10:00:00"); n < 2 {
		t.Errorf("expected a header per redraw, got %d in %q", n, out.String())
	}
}

// unobservedService never reports changes, like a database written to by
// another process.
type unobservedService struct {
	*testutil.FakeService
}

func (u unobservedService) ObserveTodos(fn func([]service.Todo)) func() {
	todos, _ := u.ListTodos(context.Background())
	fn(todos)
	return func() {}
}

func TestListCommand_WatchPollsForOutsideChanges(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTodo("Buy milk", false)
	svc := unobservedService{fake}

	clock := clockwork.NewFakeClockAt(testNow)
	cfg := &config.Config{Dir: t.TempDir(), Clock: clock}

	cmd := &commands.ListCmd{}
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse([]string{"--watch"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out, errOut syncBuffer
	done := make(chan int)
	go func() {
		done <- cmd.Run(ctx, cfg, svc, nil, &out, &errOut)
	}()

	clock.BlockUntil(1)
	fake.AddTodo("Call mom", false)
	if strings.Contains(out.String(), "Call mom") {
		t.Fatal("change must not show up before the next poll")
	}
	clock.Advance(2 * time.Second)
	waitFor(t, func() bool { return strings.Contains(out.String(), "Call mom") })

	cancel()
	<-done
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc,
		[]string{"--description", "two litres", "Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	todo, ok := svc.Todo(1)
	if !ok {
		t.Fatal("todo was not stored")
	}
	if todo.Title != "Buy milk" || todo.Description != "two litres" || todo.IsDone {
		t.Errorf("unexpected todo %#v", todo)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(), []string{"Buy milk"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"  "}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: title required\n" {
		t.Errorf("expected title required error, got %q", stderr)
	}
	if len(svc.Calls) != 0 {
		t.Errorf("expected nothing stored, got %v", svc.Calls)
	}
}

func TestAddCommand_TitleTruncated(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{strings.Repeat("x", 80)}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	todo, _ := svc.Todo(1)
	if len(todo.Title) != service.TitleMaxChars {
		t.Errorf("expected title of %d chars, got %d", service.TitleMaxChars, len(todo.Title))
	}
}

func TestAddCommand_WithReminder(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc,
		[]string{"--day", "tomorrow", "--time", "9", "Dentist"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expectedCalls := []string{"UpsertTodo 1", "UpsertReminder 2"}
	if strings.Join(svc.Calls, ",") != strings.Join(expectedCalls, ",") {
		t.Errorf("expected calls %v, got %v", expectedCalls, svc.Calls)
	}

	reminders := svc.Reminders()
	if len(reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(reminders))
	}
	if reminders[0].TodoID != 1 || !reminders[0].At.Equal(tomorrowAt(9, 0)) {
		t.Errorf("unexpected reminder %#v", reminders[0])
	}
}

func TestAddCommand_ReminderTooSoonStoresNothing(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc,
		[]string{"--day", "today", "--time", "10:30", "Dentist"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: reminder is too soon") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls) != 0 {
		t.Errorf("expected nothing stored, got %v", svc.Calls)
	}
}

func TestAddCommand_DayWithoutTime(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(),
		[]string{"--day", "tomorrow", "Dentist"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --day and --time must be given together\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_Title(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", true)

	stdout, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "Buy oat milk", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	todo, _ := svc.Todo(1)
	if todo.Title != "Buy oat milk" || !todo.IsDone {
		t.Errorf("unexpected todo %#v", todo)
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Buy milk", false)
	svc.UpsertTodo(context.Background(), service.Todo{ID: id, Title: "Buy milk", Description: "old"})

	_, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--description", "", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	todo, _ := svc.Todo(id)
	if todo.Description != "" || todo.Title != "Buy milk" {
		t.Errorf("unexpected todo %#v", todo)
	}
}

func TestEditCommand_EmptyTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "", "1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)

	_, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

// Tests for done command
func TestDoneCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	svc.AddTodo("Buy eggs", false)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	if todo, _ := svc.Todo(2); !todo.IsDone {
		t.Error("expected todo 2 to be done")
	}
	if todo, _ := svc.Todo(1); todo.IsDone {
		t.Error("expected todo 1 to stay open")
	}
}

func TestDoneCommand_Undo(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", true)

	_, _, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"--undo", "1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if todo, _ := svc.Todo(1); todo.IsDone {
		t.Error("expected todo to be open again")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: todo reference required\n" {
		t.Errorf("expected reference required error, got %q", stderr)
	}
}

func TestDoneCommand_InvalidRef(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, testutil.NewFakeService(), []string{"abc"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid reference: abc\n" {
		t.Errorf("expected invalid reference error, got %q", stderr)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Only todo", false)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"5"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: todo number out of range: 5\n" {
		t.Errorf("expected out of range error, got %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand_DeletesAfterWindow(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	svc.AddTodo("Buy eggs", false)

	stdout, stderr, code := runRm(t, context.Background(), svc, []string{"--window", "30ms", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if !strings.Contains(stderr, "\rremoving Buy milk [") || !strings.Contains(stderr, "(Ctrl+C to undo)") {
		t.Errorf("expected progress output, got %q", stderr)
	}
	if !strings.HasSuffix(stderr, "\n") {
		t.Errorf("expected progress line to be terminated, got %q", stderr)
	}

	if _, ok := svc.Todo(1); ok {
		t.Error("expected todo 1 to be deleted")
	}
	if _, ok := svc.Todo(2); !ok {
		t.Error("expected todo 2 to remain")
	}
}

func TestRmCommand_Multiple(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	svc.AddTodo("Buy eggs", false)
	svc.AddTodo("Call mom", false)

	_, _, code := runRm(t, context.Background(), svc, []string{"--window", "30ms", "1", "3", "1"}, true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	todos, _ := svc.ListTodos(context.Background())
	if len(todos) != 1 || todos[0].Title != "Buy eggs" {
		t.Errorf("expected only 'Buy eggs' to remain, got %v", todos)
	}
}

func TestRmCommand_InterruptUndoes(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, _, code := runRm(t, ctx, svc, []string{"--window", "1h", "1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "undone\n" {
		t.Errorf("expected 'undone\\n', got %q", stdout)
	}
	if _, ok := svc.Todo(1); !ok {
		t.Error("expected todo to survive undo")
	}
	for _, call := range svc.Calls {
		if strings.HasPrefix(call, "DeleteTodo") {
			t.Errorf("unexpected delete call %q", call)
		}
	}
}

func TestRmCommand_DeleteError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	svc.DeleteTodoErr = errors.New("disk full")

	stdout, stderr, code := runRm(t, context.Background(), svc, []string{"--window", "10ms", "1"}, true)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: backend error: disk full\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: todo reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for remind command
func TestRemindCommand_Create(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	stdout, stderr, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--day", "tomorrow", "--time", "18:30", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok tomorrow @ 18:30\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	reminders := svc.Reminders()
	if len(reminders) != 1 || !reminders[0].At.Equal(tomorrowAt(18, 30)) {
		t.Errorf("unexpected reminders %v", reminders)
	}
}

func TestRemindCommand_RelativeCrossesMidnight(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	// 10:00 + 15h lands on the next day
	stdout, stderr, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--day", "today", "--time", "+15h", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok tomorrow @ 01:00\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestRemindCommand_EditKeepsIDAndDay(t *testing.T) {
	svc := testutil.NewFakeService()
	todoID := svc.AddTodo("Dentist", false)
	reminderID := svc.AddReminder(todoID, service.Reminder{At: tomorrowAt(9, 0)})

	stdout, _, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--edit", "1", "--time", "12", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok tomorrow @ 12:00\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	reminders := svc.Reminders()
	if len(reminders) != 1 {
		t.Fatalf("expected reminder to be updated in place, got %v", reminders)
	}
	if reminders[0].ID != reminderID || !reminders[0].At.Equal(tomorrowAt(12, 0)) {
		t.Errorf("unexpected reminder %#v", reminders[0])
	}
}

func TestRemindCommand_EditPastReminderNeedsDay(t *testing.T) {
	svc := testutil.NewFakeService()
	todoID := svc.AddTodo("Dentist", false)
	stale := time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)
	svc.AddReminder(todoID, service.Reminder{At: stale})

	stdout, stderr, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--edit", "1", "--time", "08:00", "1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: day is in the past: 2026-10-10\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	reminders := svc.Reminders()
	if len(reminders) != 1 || !reminders[0].At.Equal(stale) {
		t.Errorf("expected reminder to stay unchanged, got %v", reminders)
	}
}

func TestRemindCommand_PastDay(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	_, stderr, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--day", "2026-10-01", "--time", "9", "1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: day is in the past: 2026-10-01\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Reminders()) != 0 {
		t.Error("expected no reminder to be stored")
	}
}

func TestRemindCommand_MissingFlags(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	_, stderr, code := runCommand(t, &commands.RemindCmd{}, svc, []string{"--day", "today", "1"}, false)
	if code != exitcode.UserError || stderr != "error: --time required\n" {
		t.Errorf("unexpected result %d %q", code, stderr)
	}

	_, stderr, code = runCommand(t, &commands.RemindCmd{}, svc, []string{"--time", "9", "1"}, false)
	if code != exitcode.UserError || stderr != "error: --day required\n" {
		t.Errorf("unexpected result %d %q", code, stderr)
	}
}

func TestRemindCommand_StoreError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)
	svc.UpsertReminderErr = errors.New("database is locked")

	_, stderr, code := runCommand(t, &commands.RemindCmd{}, svc,
		[]string{"--day", "tomorrow", "--time", "9", "1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: database is locked\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for reminders and unremind commands
func TestRemindersCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Dentist", false)
	svc.AddReminder(id, service.Reminder{At: tomorrowAt(9, 0)})
	svc.AddReminder(id, service.Reminder{At: testNow.Add(-time.Hour)})

	stdout, _, code := runCommand(t, &commands.RemindersCmd{}, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  today @ 09:00 (past)\n   2  tomorrow @ 09:00\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestRemindersCommand_None(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	stdout, _, code := runCommand(t, &commands.RemindersCmd{}, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no reminders\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestUnremindCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Dentist", false)
	svc.AddReminder(id, service.Reminder{At: tomorrowAt(9, 0)})
	keep := svc.AddReminder(id, service.Reminder{At: tomorrowAt(12, 0)})

	stdout, _, code := runCommand(t, &commands.UnremindCmd{}, svc, []string{"1", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	reminders := svc.Reminders()
	if len(reminders) != 1 || reminders[0].ID != keep {
		t.Errorf("unexpected reminders %v", reminders)
	}
}

func TestUnremindCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Dentist", false)

	_, stderr, code := runCommand(t, &commands.UnremindCmd{}, svc, []string{"1", "2"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: reminder number out of range: 2\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for export-ics command
func TestExportCommand_Stdout(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Call mom", false)
	reminderID := svc.AddReminder(id, service.Reminder{At: tomorrowAt(9, 0)})
	svc.AddTodo("No reminders", false)

	stdout, _, code := runCommand(t, &commands.ExportCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Call mom", "BEGIN:VALARM"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if reminderID != 2 || !strings.Contains(stdout, "reminder-2@gtodo") {
		t.Errorf("expected event for reminder 2, got %q", stdout)
	}
	if strings.Contains(stdout, "No reminders") {
		t.Error("todos without reminders must not be exported")
	}
}

func TestExportCommand_File(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddTodo("Call mom", false)
	svc.AddReminder(id, service.Reminder{At: tomorrowAt(9, 0)})
	path := filepath.Join(t.TempDir(), "todos.ics")

	stdout, _, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--out", path}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY:Call mom") {
		t.Errorf("unexpected file content %q", data)
	}
}

// Tests for sync command
func useExporter(t *testing.T, exp service.Exporter, err error) {
	t.Helper()
	orig := commands.NewExporter
	commands.NewExporter = func(ctx context.Context, cfg *config.Config) (service.Exporter, error) {
		return exp, err
	}
	t.Cleanup(func() { commands.NewExporter = orig })
}

func TestSyncCommand_ExportsAll(t *testing.T) {
	svc := testutil.NewFakeService()
	first := svc.AddTodo("Buy milk", false)
	second := svc.AddTodo("Buy eggs", true)
	svc.AddReminder(first, service.Reminder{At: tomorrowAt(9, 0)})

	exp := testutil.NewFakeExporter()
	useExporter(t, exp, nil)

	stdout, _, code := runCommand(t, &commands.SyncCmd{}, svc, []string{"--jobs", "2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "synced 2 todos\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if exp.Exported[first] != 1 {
		t.Errorf("expected todo %d with 1 reminder, got %v", first, exp.Exported)
	}
	if n, ok := exp.Exported[second]; !ok || n != 0 {
		t.Errorf("expected todo %d with no reminders, got %v", second, exp.Exported)
	}
}

func TestSyncCommand_OpenOnly(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)
	done := svc.AddTodo("Buy eggs", true)

	exp := testutil.NewFakeExporter()
	useExporter(t, exp, nil)

	stdout, _, code := runCommand(t, &commands.SyncCmd{}, svc, []string{"--open"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "synced 1 todos\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if _, ok := exp.Exported[done]; ok {
		t.Error("done todo must not be exported with --open")
	}
}

func TestSyncCommand_AuthRevoked(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTodo("Buy milk", false)

	exp := testutil.NewFakeExporter()
	exp.Err = googletasks.ErrAuth
	useExporter(t, exp, nil)

	_, stderr, code := runCommand(t, &commands.SyncCmd{}, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: auth error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestSyncCommand_ExporterUnavailable(t *testing.T) {
	useExporter(t, nil, errors.New("failed to read token.json"))

	_, stderr, code := runCommand(t, &commands.SyncCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: auth error: failed to read token.json\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegistry_AllSortedAndUnique(t *testing.T) {
	var names []string
	for _, cmd := range commands.DefaultRegistry.All() {
		names = append(names, cmd.Name())
	}
	expected := "add,done,edit,export-ics,help,list,login,logout,remind,reminders,rm,sync,unremind,version"
	if got := strings.Join(names, ","); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}

	for _, alias := range []string{"ls", "create", "delete", "ics"} {
		if _, ok := commands.DefaultRegistry.Find(alias); !ok {
			t.Errorf("alias %q not registered", alias)
		}
	}
}
