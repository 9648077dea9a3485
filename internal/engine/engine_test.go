package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

type fakeBlobs struct {
	deleted []string
	fail    bool
}

func (f *fakeBlobs) Delete(ref string) error {
	if f.fail {
		return errors.New("blob backend down")
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

type recordingSink struct {
	events []string
}

func (r *recordingSink) Notify(_ context.Context, event string, _ any) {
	r.events = append(r.events, event)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type testEnv struct {
	svc   *Service
	blobs *fakeBlobs
	sink  *recordingSink
	clock *testClock
}

func newTestEnv(t *testing.T, mod func(*Options)) *testEnv {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := storage.Open(ctx, filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	blobs := &fakeBlobs{}
	sink := &recordingSink{}
	clock := &testClock{now: time.Now()}

	opts := Options{
		AutoApprove: true,
		Locales:     []string{"en", "vi"},
		Timezone:    time.UTC,
		Blobs:       blobs,
		Sink:        sink,
		Now:         clock.Now,
	}
	if mod != nil {
		mod(&opts)
	}

	return &testEnv{
		svc:   NewService(db, opts),
		blobs: blobs,
		sink:  sink,
		clock: clock,
	}
}

func bilingual(en, vi string) map[string]string {
	return map[string]string{"en": en, "vi": vi}
}

func createQuest(t *testing.T, env *testEnv, title string, xp int) int64 {
	t.Helper()
	id, err := env.svc.CreateTask(context.Background(), CreateTaskInput{
		Kind:        TaskKindQuest,
		Title:       bilingual(title, title+" (vi)"),
		Description: bilingual("desc", "mô tả"),
		XPReward:    xp,
	})
	if err != nil {
		t.Fatalf("create quest: %v", err)
	}
	return id
}

func getTask(t *testing.T, env *testEnv, id int64) *storage.Task {
	t.Helper()
	task, err := env.svc.TaskRepo().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task == nil {
		t.Fatalf("task %d not found", id)
	}
	return task
}

func getProfile(t *testing.T, env *testEnv) *storage.Profile {
	t.Helper()
	p, err := env.svc.ProfileRepo().GetOrCreateMain(context.Background())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	return p
}

func TestSubmitAutoApproveCompletes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := createQuest(t, env, "Morning Run", 150)

	res, err := env.svc.SubmitConfirmation(ctx, id, "ran 5k", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != ConfirmationCompleted {
		t.Fatalf("status=%s, want completed", res.Status)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.Progression == nil || res.Progression.EffectiveXP != 150 {
		t.Fatalf("progression=%+v, want +150 XP", res.Progression)
	}

	task := getTask(t, env, id)
	if task.CompletedAt == nil || task.Status != string(TaskCompleted) {
		t.Fatalf("task=%+v, want completed with timestamp", task)
	}

	// Exactly one completed confirmation backs the completed task.
	confs, err := env.svc.ConfirmationRepo().ListByTask(ctx, id)
	if err != nil {
		t.Fatalf("list confirmations: %v", err)
	}
	completed := 0
	for _, c := range confs {
		if c.Status == string(ConfirmationCompleted) {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("completed confirmations=%d, want 1", completed)
	}

	if p := getProfile(t, env); p.CurrentXP != 150 {
		t.Fatalf("profile xp=%d, want 150", p.CurrentXP)
	}

	entries, err := env.svc.JournalRepo().ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal entries=%d, want 1", len(entries))
	}
}

func TestSubmitOverdueQuestFails(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := createQuest(t, env, "Yesterday Quest", 100)
	env.clock.now = env.clock.now.Add(48 * time.Hour)

	res, err := env.svc.SubmitConfirmation(ctx, id, "too late", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != ConfirmationFailed {
		t.Fatalf("status=%s, want failed", res.Status)
	}
	if res.Progression != nil {
		t.Fatalf("no XP may be granted on failure, got %+v", res.Progression)
	}

	task := getTask(t, env, id)
	if task.CompletedAt != nil {
		t.Fatalf("completedAt must stay nil on failure")
	}
	if task.Status != string(TaskFailed) {
		t.Fatalf("task status=%s, want failed", task.Status)
	}

	if p := getProfile(t, env); p.CurrentXP != 0 || p.Level != 0 {
		t.Fatalf("ledger moved on failure: %+v", p)
	}

	// Failed record is kept for audit.
	confs, _ := env.svc.ConfirmationRepo().ListByTask(ctx, id)
	if len(confs) != 1 || confs[0].Status != string(ConfirmationFailed) {
		t.Fatalf("confs=%+v, want one failed record", confs)
	}
}

func TestSubmitPendingThenPass(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Evening Read", 200)

	res, err := env.svc.SubmitConfirmation(ctx, id, "read chapter 4", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != ConfirmationPending {
		t.Fatalf("status=%s, want pending", res.Status)
	}
	if getTask(t, env, id).Status != string(TaskPendingReview) {
		t.Fatalf("task must be pending_review after submission")
	}

	rev, err := env.svc.ReviewConfirmation(ctx, res.ConfirmationID, DecisionPass)
	if err != nil {
		t.Fatalf("review pass: %v", err)
	}
	if rev.Status != ConfirmationCompleted {
		t.Fatalf("review status=%s, want completed", rev.Status)
	}
	if rev.Progression == nil || rev.Progression.EffectiveXP != 200 {
		t.Fatalf("progression=%+v, want +200 XP", rev.Progression)
	}

	task := getTask(t, env, id)
	if task.CompletedAt == nil {
		t.Fatalf("completedAt not set after pass")
	}

	// Pass keeps the confirmation as an audit record.
	conf, _ := env.svc.ConfirmationRepo().Get(ctx, res.ConfirmationID)
	if conf == nil || conf.Status != string(ConfirmationCompleted) {
		t.Fatalf("conf=%+v, want retained completed record", conf)
	}

	entries, _ := env.svc.JournalRepo().ListRecent(ctx, 10)
	if len(entries) != 1 {
		t.Fatalf("journal entries=%d, want 1", len(entries))
	}
}

func TestReviewRejectRestoresTask(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Sketch Practice", 80)
	ref := "sketch.png"
	res, err := env.svc.SubmitConfirmation(ctx, id, "daily sketch", &ref)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	rev, err := env.svc.ReviewConfirmation(ctx, res.ConfirmationID, DecisionReject)
	if err != nil {
		t.Fatalf("review reject: %v", err)
	}
	if len(rev.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", rev.Warnings)
	}

	if conf, _ := env.svc.ConfirmationRepo().Get(ctx, res.ConfirmationID); conf != nil {
		t.Fatalf("confirmation must be deleted on reject")
	}
	if len(env.blobs.deleted) != 1 || env.blobs.deleted[0] != ref {
		t.Fatalf("image not deleted: %v", env.blobs.deleted)
	}

	avail, err := env.svc.ListAvailableTasks(ctx)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	found := false
	for _, a := range avail {
		if a.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("task must reappear in available list after reject")
	}

	if p := getProfile(t, env); p.CurrentXP != 0 {
		t.Fatalf("reject must not grant XP")
	}
}

func TestRejectImageFailureStillDeletesConfirmation(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Water Plants", 20)
	ref := "plants.jpg"
	res, err := env.svc.SubmitConfirmation(ctx, id, "done", &ref)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	env.blobs.fail = true
	rev, err := env.svc.ReviewConfirmation(ctx, res.ConfirmationID, DecisionReject)
	if err != nil {
		t.Fatalf("reject must not fail on image delete: %v", err)
	}
	if len(rev.Warnings) != 1 {
		t.Fatalf("warnings=%v, want one image warning", rev.Warnings)
	}
	if conf, _ := env.svc.ConfirmationRepo().Get(ctx, res.ConfirmationID); conf != nil {
		t.Fatalf("confirmation record must still be gone")
	}
}

func TestOverdueAchievementAutoFails(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	due := env.clock.now.Add(-48 * time.Hour)
	id, err := env.svc.CreateTask(ctx, CreateTaskInput{
		Kind:        TaskKindAchievement,
		Title:       bilingual("Finish Portfolio", "Hoàn thành hồ sơ"),
		Description: bilingual("portfolio", "hồ sơ"),
		XPReward:    500,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	res, err := env.svc.SubmitConfirmation(ctx, id, "finally done", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != ConfirmationFailed {
		t.Fatalf("status=%s, want failed", res.Status)
	}
}

func TestAchievementWithoutDueDateNeverOverdue(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id, err := env.svc.CreateTask(ctx, CreateTaskInput{
		Kind:        TaskKindAchievement,
		Title:       bilingual("Learn Guitar", "Học đàn"),
		Description: bilingual("guitar", "đàn"),
		XPReward:    300,
	})
	if err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	env.clock.now = env.clock.now.Add(90 * 24 * time.Hour)
	res, err := env.svc.SubmitConfirmation(ctx, id, "played a song", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Status != ConfirmationCompleted {
		t.Fatalf("status=%s, want completed", res.Status)
	}
}

func TestSameDayResubmitOverwrites(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Journal Entry", 30)

	first, err := env.svc.SubmitConfirmation(ctx, id, "first attempt", nil)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := env.svc.SubmitConfirmation(ctx, id, "second attempt", nil)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.ConfirmationID != second.ConfirmationID {
		t.Fatalf("same-day ids differ: %q vs %q", first.ConfirmationID, second.ConfirmationID)
	}

	confs, _ := env.svc.ConfirmationRepo().ListByTask(ctx, id)
	if len(confs) != 1 {
		t.Fatalf("confirmations=%d, want 1 after overwrite", len(confs))
	}
	if confs[0].Description != "second attempt" {
		t.Fatalf("description=%q, want the later submission", confs[0].Description)
	}
}

func TestStalePendingBlocksNewSubmission(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Stretch", 10)
	if _, err := env.svc.SubmitConfirmation(ctx, id, "day one", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	env.clock.now = env.clock.now.Add(48 * time.Hour)
	_, err := env.svc.SubmitConfirmation(ctx, id, "day three", nil)
	var ise InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("err=%v, want InvalidStateError for stale pending claim", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AutoApprove = false })
	ctx := context.Background()

	id := createQuest(t, env, "Clean Desk", 40)
	ref := "desk.png"
	res, err := env.svc.SubmitConfirmation(ctx, id, "spotless", &ref)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := env.svc.DeleteTask(ctx, id); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	if task, _ := env.svc.TaskRepo().Get(ctx, id); task != nil {
		t.Fatalf("task must be gone")
	}
	if conf, _ := env.svc.ConfirmationRepo().Get(ctx, res.ConfirmationID); conf != nil {
		t.Fatalf("no orphan confirmation may survive a task delete")
	}
	if len(env.blobs.deleted) != 1 || env.blobs.deleted[0] != ref {
		t.Fatalf("image not deleted: %v", env.blobs.deleted)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{
			"missing vi title",
			CreateTaskInput{
				Kind:        TaskKindQuest,
				Title:       map[string]string{"en": "Run"},
				Description: bilingual("d", "d"),
				XPReward:    10,
			},
		},
		{
			"zero xp without special reward",
			CreateTaskInput{
				Kind:        TaskKindQuest,
				Title:       bilingual("Run", "Chạy"),
				Description: bilingual("d", "d"),
				XPReward:    0,
			},
		},
		{
			"negative xp",
			CreateTaskInput{
				Kind:        TaskKindQuest,
				Title:       bilingual("Run", "Chạy"),
				Description: bilingual("d", "d"),
				XPReward:    -5,
			},
		},
		{
			"invalid kind",
			CreateTaskInput{
				Kind:        TaskKind("epic"),
				Title:       bilingual("Run", "Chạy"),
				Description: bilingual("d", "d"),
				XPReward:    10,
			},
		},
	}

	for _, tc := range cases {
		_, err := env.svc.CreateTask(ctx, tc.in)
		var ve ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: err=%v, want ValidationError", tc.name, err)
		}
	}

	// Zero XP is fine when a special reward backs it.
	id, err := env.svc.CreateTask(ctx, CreateTaskInput{
		Kind:          TaskKindQuest,
		Title:         bilingual("Run", "Chạy"),
		Description:   bilingual("d", "d"),
		XPReward:      0,
		SpecialReward: bilingual("bubble tea", "trà sữa"),
	})
	if err != nil {
		t.Fatalf("special-reward task: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a task id")
	}
}

func TestQuestCannotCarryDueDate(t *testing.T) {
	env := newTestEnv(t, nil)
	due := time.Now().Add(24 * time.Hour)

	_, err := env.svc.CreateTask(context.Background(), CreateTaskInput{
		Kind:        TaskKindQuest,
		Title:       bilingual("Run", "Chạy"),
		Description: bilingual("d", "d"),
		XPReward:    10,
		DueDate:     &due,
	})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v, want ValidationError", err)
	}
}

func TestReviewInvalidTargets(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.ReviewConfirmation(ctx, "missing_2026-01-01", DecisionPass)
	var nfe NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("err=%v, want NotFoundError", err)
	}

	// Auto-approved confirmations are terminal.
	id := createQuest(t, env, "Auto Done", 50)
	res, err := env.svc.SubmitConfirmation(ctx, id, "done", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = env.svc.ReviewConfirmation(ctx, res.ConfirmationID, DecisionPass)
	var ise InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("err=%v, want InvalidStateError", err)
	}
}

func TestSubmitToCompletedTaskRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := createQuest(t, env, "Once Only", 50)
	if _, err := env.svc.SubmitConfirmation(ctx, id, "done", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := env.svc.SubmitConfirmation(ctx, id, "again", nil)
	var ise InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("err=%v, want InvalidStateError", err)
	}
}

func TestAddXPPersists(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	sum, err := env.svc.AddXP(ctx, 900)
	if err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if sum.NewXP != 900 || sum.LeveledUp {
		t.Fatalf("sum=%+v, want xp=900 no level", sum)
	}

	sum, err = env.svc.AddXP(ctx, 150)
	if err != nil {
		t.Fatalf("add xp: %v", err)
	}
	if !sum.LeveledUp || sum.NewLevel != 1 || sum.NewXP != 25 {
		t.Fatalf("sum=%+v, want level 1 with 25 XP", sum)
	}

	if p := getProfile(t, env); p.Level != 1 || p.CurrentXP != 25 {
		t.Fatalf("profile=%+v, want persisted level 1 / 25 XP", p)
	}

	if _, err := env.svc.AddXP(ctx, -1); err == nil {
		t.Fatalf("negative amount must be rejected")
	}
}

func TestSubmitEmitsEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	id := createQuest(t, env, "Notify Me", 50)
	if _, err := env.svc.SubmitConfirmation(ctx, id, "done", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	found := false
	for _, e := range env.sink.events {
		if e == "task.completed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("events=%v, want task.completed", env.sink.events)
	}
}
