package dataset_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/davral/homebid/internal/adapters/dataset"
	"github.com/davral/homebid/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given applicant and unit files", t, func() {
		dir := t.TempDir()

		applicantsPath := writeFile(t, dir, "applicants.json", `[
  {"id": "a-1", "name": "Ada", "allowsGroups": true,
   "preferences": {"bidCeiling": 800, "maxRoommates": 2, "cleanliness": 80}},
  {"id": "a-2", "name": "Ben",
   "preferences": {"bidCeiling": 500}}
]`)
		unitsPath := writeFile(t, dir, "units.json", `[
  {"id": "u-1", "name": "Maple 1", "areaSqm": 60, "bedrooms": 2,
   "capacity": 2, "allowsSharing": true},
  {"id": "u-2", "name": "Maple 2", "capacity": 1, "occupancy": 1}
]`)
		outPath := filepath.Join(dir, "assignments.json")

		store := dataset.New(applicantsPath, unitsPath, outPath)

		Convey("When snapshotting", func() {
			applicants, units, err := store.Snapshot(ctx)

			Convey("Then applicants decode with their profiles", func() {
				So(err, ShouldBeNil)
				So(applicants, ShouldHaveLength, 2)
				So(applicants[0].ID, ShouldEqual, "a-1")
				So(applicants[0].AllowsGroups, ShouldBeTrue)
				So(applicants[0].Profile.BidCeiling, ShouldEqual, 800)
				So(*applicants[0].Profile.Cleanliness, ShouldEqual, 80)
			})

			Convey("Then units without remaining capacity are dropped", func() {
				So(units, ShouldHaveLength, 1)
				So(units[0].ID, ShouldEqual, "u-1")
			})
		})

		Convey("When applying assignments", func() {
			assignments := []model.Assignment{{
				Round:        1,
				UnitID:       "u-1",
				UnitName:     "Maple 1",
				Capacity:     2,
				Occupancy:    1,
				WinningBid:   800,
				PaymentTotal: 800,
				Members: []model.MemberPayment{
					{ApplicantID: "a-1", Name: "Ada", Payment: 800, AdjustedBid: 800},
				},
			}}

			So(store.Apply(ctx, assignments), ShouldBeNil)

			Convey("Then the output file holds the table with generated ids", func() {
				raw, err := os.ReadFile(outPath)
				So(err, ShouldBeNil)

				var got []model.Assignment
				So(json.Unmarshal(raw, &got), ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].ID, ShouldNotBeBlank)
				So(got[0].UnitID, ShouldEqual, "u-1")
				So(got[0].Members[0].ApplicantID, ShouldEqual, "a-1")
			})
		})
	})

	Convey("Given an applicant with a malformed preference payload", t, func() {
		dir := t.TempDir()

		applicantsPath := writeFile(t, dir, "applicants.json", `[
  {"id": "a-1", "name": "Ada", "preferences": {"bidCeiling": -5}},
  {"id": "a-2", "name": "Ben", "preferences": {"bidCeiling": 500}}
]`)
		unitsPath := writeFile(t, dir, "units.json", `[{"id": "u-1", "capacity": 1}]`)

		store := dataset.New(applicantsPath, unitsPath, filepath.Join(dir, "out.json"))

		Convey("Then the bad row is skipped, not fatal", func() {
			applicants, _, err := store.Snapshot(ctx)

			So(err, ShouldBeNil)
			So(applicants, ShouldHaveLength, 1)
			So(applicants[0].ID, ShouldEqual, "a-2")
		})
	})

	Convey("Given a missing input file", t, func() {
		dir := t.TempDir()
		store := dataset.New(
			filepath.Join(dir, "nope.json"),
			filepath.Join(dir, "units.json"),
			filepath.Join(dir, "out.json"),
		)

		Convey("Then the snapshot fails", func() {
			_, _, err := store.Snapshot(ctx)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given unparseable unit data", t, func() {
		dir := t.TempDir()
		applicantsPath := writeFile(t, dir, "applicants.json", `[]`)
		unitsPath := writeFile(t, dir, "units.json", `{"not": "a list"}`)

		store := dataset.New(applicantsPath, unitsPath, filepath.Join(dir, "out.json"))

		Convey("Then the snapshot fails", func() {
			_, _, err := store.Snapshot(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}
