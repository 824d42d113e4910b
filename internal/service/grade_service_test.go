package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

func setupTestGradeService() (GradeService, SectionService, *testEnv) {
	env := newTestEnv()
	return NewGradeService(env.repo, env.guard, zap.NewNop()),
		NewSectionService(env.repo, env.guard, zap.NewNop()),
		env
}

// ── 年级 ──

func TestGradeService_Create_DuplicateName(t *testing.T) {
	svc, _, _ := setupTestGradeService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateGradeRequest{Name: "一年级"}); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreateGradeRequest{Name: "一年级"}); !errors.Is(err, ErrGradeNameExists) {
		t.Errorf("期望 ErrGradeNameExists，实际 %v", err)
	}
}

func TestGradeService_Update_SameNameAllowed(t *testing.T) {
	svc, _, env := setupTestGradeService()
	env.gradeWithSections("g1")
	env.gradeWithSections("g2")
	ctx := context.Background()

	if _, err := svc.Update(ctx, "g1", &dto.UpdateGradeRequest{Name: "年级-g1"}); err != nil {
		t.Errorf("名称未变不应报错: %v", err)
	}
	if _, err := svc.Update(ctx, "g1", &dto.UpdateGradeRequest{Name: "年级-g2"}); !errors.Is(err, ErrGradeNameExists) {
		t.Errorf("期望 ErrGradeNameExists，实际 %v", err)
	}
}

func TestGradeService_GetByID_IncludesSections(t *testing.T) {
	svc, _, env := setupTestGradeService()
	env.gradeWithSections("g1", "s1", "s2")

	resp, err := svc.GetByID(context.Background(), "g1")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if len(resp.Sections) != 2 {
		t.Errorf("期望 2 个班级，实际 %d", len(resp.Sections))
	}
}

func TestGradeService_Delete_CascadesSectionsAndEntries(t *testing.T) {
	svc, _, env := setupTestGradeService()
	env.teacher("t1", 10, timetable.Sunday)
	env.gradeWithSections("g1", "s1")
	env.gradeWithSections("g2", "s2")
	env.stored(&model.ScheduleEntry{ID: "e1", TeacherID: "t1", GradeID: "g1", SectionID: "s1",
		PeriodID: "p1", RoomID: "r1", Day: string(timetable.Sunday), Subject: "数学"}, true)
	env.stored(&model.ScheduleEntry{ID: "e2", TeacherID: "t1", GradeID: "g2", SectionID: "s2",
		PeriodID: "p2", RoomID: "r1", Day: string(timetable.Sunday), Subject: "数学"}, true)

	if err := svc.Delete(context.Background(), "g1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := env.m.sections.sections["s1"]; ok {
		t.Error("班级应被级联删除")
	}
	if _, ok := env.m.sections.sections["s2"]; !ok {
		t.Error("其他年级的班级不应受影响")
	}
	if env.engine.Size() != 1 || env.engine.LoadCountFor("t1") != 1 {
		t.Errorf("期望索引剩 1 条，实际 %d", env.engine.Size())
	}
}

// ── 班级 ──

func TestSectionService_Create(t *testing.T) {
	_, svc, env := setupTestGradeService()
	env.gradeWithSections("g1")
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateSectionRequest{Name: "A", GradeID: "g1"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Grade == nil || resp.Grade.ID != "g1" {
		t.Errorf("期望响应带年级信息，实际 %+v", resp)
	}

	if _, err := svc.Create(ctx, &dto.CreateSectionRequest{Name: "B", GradeID: "missing"}); !errors.Is(err, ErrGradeNotFound) {
		t.Errorf("期望 ErrGradeNotFound，实际 %v", err)
	}
}

func TestSectionService_Update_GradeChange(t *testing.T) {
	ctx := context.Background()
	g2 := "g2"

	t.Run("无排课可换年级", func(t *testing.T) {
		_, svc, env := setupTestGradeService()
		env.gradeWithSections("g1", "s1")
		env.gradeWithSections("g2")

		resp, err := svc.Update(ctx, "s1", &dto.UpdateSectionRequest{GradeID: &g2})
		if err != nil {
			t.Fatalf("Update 应成功: %v", err)
		}
		if resp.GradeID != "g2" {
			t.Errorf("期望 grade_id=g2，实际 %s", resp.GradeID)
		}
	})

	t.Run("有排课拒绝换年级", func(t *testing.T) {
		_, svc, env := setupTestGradeService()
		env.gradeWithSections("g1", "s1")
		env.gradeWithSections("g2")
		env.stored(&model.ScheduleEntry{ID: "e1", TeacherID: "t1", GradeID: "g1", SectionID: "s1",
			PeriodID: "p1", RoomID: "r1", Day: string(timetable.Sunday), Subject: "数学"}, false)

		if _, err := svc.Update(ctx, "s1", &dto.UpdateSectionRequest{GradeID: &g2}); !errors.Is(err, ErrSectionHasEntries) {
			t.Errorf("期望 ErrSectionHasEntries，实际 %v", err)
		}
		if env.m.sections.sections["s1"].GradeID != "g1" {
			t.Error("拒绝时不应修改")
		}
	})
}

func TestSectionService_Delete_Cascades(t *testing.T) {
	_, svc, env := setupTestGradeService()
	env.teacher("t1", 10, timetable.Sunday)
	env.gradeWithSections("g1", "s1")
	env.stored(&model.ScheduleEntry{ID: "e1", TeacherID: "t1", GradeID: "g1", SectionID: "s1",
		PeriodID: "p1", RoomID: "r1", Day: string(timetable.Sunday), Subject: "数学"}, true)

	if err := svc.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(env.m.entries.entries) != 0 || env.engine.Size() != 0 {
		t.Error("班级排课应被级联删除并同步索引")
	}
	if err := svc.Delete(context.Background(), "s1"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("重复删除期望 ErrSectionNotFound，实际 %v", err)
	}
}

func TestSectionService_Update_GradeChangeSerializedWithEntries(t *testing.T) {
	_, svc, env := setupTestGradeService()
	env.teacher("t1", 10, timetable.Sunday)
	env.gradeWithSections("g1", "s1")
	env.gradeWithSections("g2")

	// 取得锁时另一实例刚为该班级提交了一条排课
	locker := &mockLocker{onAcquire: func() {
		env.m.entries.entries["e1"] = &model.ScheduleEntry{ID: "e1", TeacherID: "t1", GradeID: "g1", SectionID: "s1",
			PeriodID: "p1", RoomID: "r1", Day: string(timetable.Sunday), Subject: "数学"}
	}}
	env.guard.locker = locker

	g2 := "g2"
	_, err := svc.Update(context.Background(), "s1", &dto.UpdateSectionRequest{GradeID: &g2})
	if !errors.Is(err, ErrSectionHasEntries) {
		t.Fatalf("期望 ErrSectionHasEntries，实际 %v", err)
	}
	if env.m.sections.sections["s1"].GradeID != "g1" {
		t.Error("班级年级不应被修改")
	}
	if locker.calls != 1 {
		t.Errorf("换年级应获取 1 次分布式锁，实际 %d", locker.calls)
	}
}

func TestSectionService_Update_RenameSkipsLock(t *testing.T) {
	_, svc, env := setupTestGradeService()
	env.gradeWithSections("g1", "s1")
	locker := &mockLocker{}
	env.guard.locker = locker

	name := "新名称"
	resp, err := svc.Update(context.Background(), "s1", &dto.UpdateSectionRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Name != name || locker.calls != 0 {
		t.Errorf("仅改名不应取锁，name=%s calls=%d", resp.Name, locker.calls)
	}
}
