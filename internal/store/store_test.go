package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/swimresults/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("日付 %q の解析に失敗: %v", s, err)
	}
	return d
}

func seedSwimmer(t *testing.T, st Store, sw model.Swimmer) int64 {
	t.Helper()

	id, err := st.CreateSwimmer(context.Background(), sw)
	if err != nil {
		t.Fatalf("CreateSwimmer() でエラーが発生: %v", err)
	}
	return id
}

func seedMeet(t *testing.T, st Store, m model.Meet) int64 {
	t.Helper()

	id, err := st.CreateMeet(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMeet() でエラーが発生: %v", err)
	}
	return id
}

// runStoreTests はStore実装に共通する振る舞いを検証する。
// newStore は呼び出しごとに空のStoreを返す必要がある。
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	melina := model.Swimmer{Gender: model.GenderFemale, FirstName: "Melina", LastName: "Mattis", BirthYear: 1994}
	lochner := model.Meet{
		Name:      "8. Volvo-Lochner-Cup",
		StartDate: mustDate(t, "02.05.2004"),
		EndDate:   mustDate(t, "03.05.2004"),
		City:      "Berlin",
		Country:   "Germany",
	}

	t.Run("選手の登録・取得・更新・削除ができること", func(t *testing.T) {
		st := newStore(t)

		id := seedSwimmer(t, st, melina)
		got, err := st.GetSwimmer(ctx, id)
		if err != nil {
			t.Fatalf("GetSwimmer() でエラーが発生: %v", err)
		}
		want := melina
		want.ID = id
		if got != want {
			t.Errorf("GetSwimmer() = %+v, want %+v", got, want)
		}

		want.BirthYear = 1995
		if err := st.UpdateSwimmer(ctx, want); err != nil {
			t.Fatalf("UpdateSwimmer() でエラーが発生: %v", err)
		}
		if got, _ := st.GetSwimmer(ctx, id); got.BirthYear != 1995 {
			t.Errorf("更新後の BirthYear = %d, want 1995", got.BirthYear)
		}

		if err := st.DeleteSwimmer(ctx, id); err != nil {
			t.Fatalf("DeleteSwimmer() でエラーが発生: %v", err)
		}
		if _, err := st.GetSwimmer(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("削除後の GetSwimmer() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("指定したIDで登録し、以降の採番はそれより大きいこと", func(t *testing.T) {
		st := newStore(t)

		explicit := melina
		explicit.ID = 155847
		if id := seedSwimmer(t, st, explicit); id != 155847 {
			t.Errorf("CreateSwimmer() = %d, want 155847", id)
		}
		if id := seedSwimmer(t, st, melina); id <= 155847 {
			t.Errorf("採番されたID = %d, want > 155847", id)
		}

		if _, err := st.CreateSwimmer(ctx, explicit); !errors.Is(err, ErrConflict) {
			t.Errorf("重複IDの CreateSwimmer() error = %v, want %v", err, ErrConflict)
		}
	})

	t.Run("一覧はID順で、空の場合は空スライスを返すこと", func(t *testing.T) {
		st := newStore(t)

		empty, err := st.ListSwimmers(ctx)
		if err != nil {
			t.Fatalf("ListSwimmers() でエラーが発生: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("ListSwimmers() = %#v, want empty slice", empty)
		}

		for _, id := range []int64{30, 10, 20} {
			sw := melina
			sw.ID = id
			seedSwimmer(t, st, sw)
		}
		list, err := st.ListSwimmers(ctx)
		if err != nil {
			t.Fatalf("ListSwimmers() でエラーが発生: %v", err)
		}
		var ids []int64
		for _, sw := range list {
			ids = append(ids, sw.ID)
		}
		if !reflect.DeepEqual(ids, []int64{10, 20, 30}) {
			t.Errorf("ListSwimmers() のID = %v, want [10 20 30]", ids)
		}
	})

	t.Run("存在しないIDの更新・削除はErrNotFound", func(t *testing.T) {
		st := newStore(t)

		missing := melina
		missing.ID = 999
		if err := st.UpdateSwimmer(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateSwimmer() error = %v, want %v", err, ErrNotFound)
		}
		if err := st.DeleteSwimmer(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteSwimmer() error = %v, want %v", err, ErrNotFound)
		}
		if _, err := st.GetMeet(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetMeet() error = %v, want %v", err, ErrNotFound)
		}
		if err := st.DeleteMeet(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteMeet() error = %v, want %v", err, ErrNotFound)
		}
		if err := st.DeleteResult(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeleteResult() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("大会の登録・取得・更新ができること", func(t *testing.T) {
		st := newStore(t)

		id := seedMeet(t, st, lochner)
		got, err := st.GetMeet(ctx, id)
		if err != nil {
			t.Fatalf("GetMeet() でエラーが発生: %v", err)
		}
		if got.Name != lochner.Name || got.City != "Berlin" || got.Country != "Germany" {
			t.Errorf("GetMeet() = %+v", got)
		}
		if !got.StartDate.Equal(lochner.StartDate) || !got.EndDate.Equal(lochner.EndDate) {
			t.Errorf("開催日 = %v - %v, want %v - %v", got.StartDate, got.EndDate, lochner.StartDate, lochner.EndDate)
		}

		got.City = ""
		got.Name = "Lochner-Cup"
		if err := st.UpdateMeet(ctx, got); err != nil {
			t.Fatalf("UpdateMeet() でエラーが発生: %v", err)
		}
		updated, err := st.GetMeet(ctx, id)
		if err != nil {
			t.Fatalf("GetMeet() でエラーが発生: %v", err)
		}
		if updated.Name != "Lochner-Cup" || updated.City != "" {
			t.Errorf("更新後の大会 = %+v", updated)
		}

		meets, err := st.ListMeets(ctx)
		if err != nil || len(meets) != 1 {
			t.Errorf("ListMeets() = %v, %v, want 1件", meets, err)
		}
	})

	t.Run("記録の登録と選手・大会ごとの取得ができること", func(t *testing.T) {
		st := newStore(t)

		swimmerID := seedSwimmer(t, st, melina)
		meetID := seedMeet(t, st, lochner)
		r := model.Result{
			SwimmerID: swimmerID,
			MeetID:    meetID,
			Course:    model.CourseLCM,
			Distance:  100,
			Stroke:    model.StrokeFree,
			Time:      model.RaceTime(5632),
		}
		id, err := st.CreateResult(ctx, r)
		if err != nil {
			t.Fatalf("CreateResult() でエラーが発生: %v", err)
		}
		r.ID = id

		for name, list := range map[string]func() ([]model.Result, error){
			"ListResults":          func() ([]model.Result, error) { return st.ListResults(ctx) },
			"ListResultsBySwimmer": func() ([]model.Result, error) { return st.ListResultsBySwimmer(ctx, swimmerID) },
			"ListResultsByMeet":    func() ([]model.Result, error) { return st.ListResultsByMeet(ctx, meetID) },
		} {
			got, err := list()
			if err != nil {
				t.Fatalf("%s() でエラーが発生: %v", name, err)
			}
			if !reflect.DeepEqual(got, []model.Result{r}) {
				t.Errorf("%s() = %+v, want [%+v]", name, got, r)
			}
		}

		if _, err := st.ListResultsBySwimmer(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("存在しない選手の ListResultsBySwimmer() error = %v, want %v", err, ErrNotFound)
		}
		if _, err := st.ListResultsByMeet(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("存在しない大会の ListResultsByMeet() error = %v, want %v", err, ErrNotFound)
		}

		if err := st.DeleteResult(ctx, id); err != nil {
			t.Fatalf("DeleteResult() でエラーが発生: %v", err)
		}
		if got, _ := st.ListResults(ctx); len(got) != 0 {
			t.Errorf("削除後の ListResults() = %+v, want empty", got)
		}
	})

	t.Run("存在しない選手・大会を参照する記録はErrConflict", func(t *testing.T) {
		st := newStore(t)

		meetID := seedMeet(t, st, lochner)
		_, err := st.CreateResult(ctx, model.Result{
			SwimmerID: 999,
			MeetID:    meetID,
			Course:    model.CourseSCM,
			Distance:  50,
			Stroke:    model.StrokeFly,
			Time:      model.RaceTime(2701),
		})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("CreateResult() error = %v, want %v", err, ErrConflict)
		}
	})

	t.Run("選手・大会の削除で記録も削除されること", func(t *testing.T) {
		st := newStore(t)

		swimmerID := seedSwimmer(t, st, melina)
		otherID := seedSwimmer(t, st, model.Swimmer{Gender: model.GenderMale, FirstName: "Paul", LastName: "Biedermann", BirthYear: 1986})
		meetID := seedMeet(t, st, lochner)
		for _, sid := range []int64{swimmerID, otherID} {
			if _, err := st.CreateResult(ctx, model.Result{
				SwimmerID: sid, MeetID: meetID, Course: model.CourseLCM, Distance: 200, Stroke: model.StrokeIM, Time: model.RaceTime(13012),
			}); err != nil {
				t.Fatalf("CreateResult() でエラーが発生: %v", err)
			}
		}

		if err := st.DeleteSwimmer(ctx, swimmerID); err != nil {
			t.Fatalf("DeleteSwimmer() でエラーが発生: %v", err)
		}
		if got, _ := st.ListResults(ctx); len(got) != 1 || got[0].SwimmerID != otherID {
			t.Errorf("選手削除後の ListResults() = %+v, want 1件", got)
		}

		if err := st.DeleteMeet(ctx, meetID); err != nil {
			t.Fatalf("DeleteMeet() でエラーが発生: %v", err)
		}
		if got, _ := st.ListResults(ctx); len(got) != 0 {
			t.Errorf("大会削除後の ListResults() = %+v, want empty", got)
		}
	})
}
