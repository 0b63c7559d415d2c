package grouping_test

import (
	"testing"

	"github.com/davral/homebid/internal/domain/grouping"
	"github.com/davral/homebid/internal/domain/model"
	"github.com/davral/homebid/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func social(id string, cleanliness float64, maxRoommates int) model.Applicant {
	return model.Applicant{
		ID:           id,
		Name:         id,
		AllowsGroups: true,
		Profile: profile.Profile{
			Cleanliness:       &cleanliness,
			MaxOtherRoommates: maxRoommates,
		},
	}
}

func keys(groups []grouping.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key()
	}
	return out
}

func find(groups []grouping.Group, key string) (grouping.Group, bool) {
	for _, g := range groups {
		if g.Key() == key {
			return g, true
		}
	}
	return grouping.Group{}, false
}

func TestGenerate(t *testing.T) {
	Convey("Given applicants with mixed compatibility and roommate budgets", t, func() {
		pool := []model.Applicant{
			social("b", 80, 2),
			social("c", 90, 1),
			social("d", 10, 3),
		}
		gen := grouping.NewGenerator()

		Convey("When groups are generated", func() {
			groups := gen.Generate(pool)

			Convey("Then every applicant gets a singleton at full compatibility", func() {
				for _, id := range []string{"b", "c", "d"} {
					g, ok := find(groups, id)
					So(ok, ShouldBeTrue)
					So(g.Size(), ShouldEqual, 1)
					So(g.Compatibility, ShouldEqual, grouping.SingletonCompatibility)
					So(g.MaxSize, ShouldEqual, 1)
				}
			})

			Convey("Then only pairs clearing the threshold survive", func() {
				So(keys(groups), ShouldResemble, []string{"b", "c", "d", "b|c"})

				pair, ok := find(groups, "b|c")
				So(ok, ShouldBeTrue)
				So(pair.Compatibility, ShouldAlmostEqual, 90, 1e-9)
			})

			Convey("Then the pair size cap is the tightest member budget plus one", func() {
				pair, _ := find(groups, "b|c")
				So(pair.MaxSize, ShouldEqual, 2)
			})
		})
	})

	Convey("Given three mutually compatible applicants", t, func() {
		pool := []model.Applicant{
			social("e", 80, 2),
			social("f", 85, 2),
			social("g", 90, 2),
		}

		Convey("When groups are generated with the default size cap", func() {
			groups := grouping.NewGenerator().Generate(pool)

			Convey("Then singletons, pairs, and the triple all appear", func() {
				So(len(groups), ShouldEqual, 7)

				triple, ok := find(groups, "e|f|g")
				So(ok, ShouldBeTrue)
				// mean of pair scores 95, 90, 95
				So(triple.Compatibility, ShouldAlmostEqual, 280.0/3, 1e-9)
				So(triple.MaxSize, ShouldEqual, 3)
			})

			Convey("Then output is ordered by compatibility then canonical key", func() {
				So(keys(groups), ShouldResemble, []string{
					"e", "f", "g",
					"e|f", "f|g",
					"e|f|g",
					"e|g",
				})
			})
		})

		Convey("When the size cap is lowered to two", func() {
			groups := grouping.NewGenerator(grouping.WithMaxGroupSize(2)).Generate(pool)

			Convey("Then no triple is enumerated", func() {
				_, ok := find(groups, "e|f|g")
				So(ok, ShouldBeFalse)
				So(len(groups), ShouldEqual, 6)
			})
		})

		Convey("When the threshold is raised above every pair score", func() {
			groups := grouping.NewGenerator(grouping.WithThreshold(99)).Generate(pool)

			Convey("Then only singletons remain", func() {
				So(keys(groups), ShouldResemble, []string{"e", "f", "g"})
			})
		})
	})

	Convey("Given an applicant who declines groups", t, func() {
		solo := social("s", 100, 4)
		solo.AllowsGroups = false
		pool := []model.Applicant{solo, social("t", 100, 4)}

		groups := grouping.NewGenerator().Generate(pool)

		Convey("Then the applicant appears only as a singleton", func() {
			So(keys(groups), ShouldResemble, []string{"s", "t"})
		})
	})

	Convey("Given an applicant with a zero roommate budget", t, func() {
		pool := []model.Applicant{social("u", 100, 0), social("v", 100, 3)}

		groups := grouping.NewGenerator().Generate(pool)

		Convey("Then no shared group includes the applicant", func() {
			So(keys(groups), ShouldResemble, []string{"u", "v"})
		})
	})

	Convey("Given a budget too small for the enumerated size", t, func() {
		// All pairs clear the threshold but w budgets only one roommate.
		pool := []model.Applicant{
			social("w", 80, 1),
			social("x", 80, 2),
			social("y", 80, 2),
		}

		groups := grouping.NewGenerator().Generate(pool)

		Convey("Then the triple is rejected even though all pairs pass", func() {
			_, ok := find(groups, "w|x|y")
			So(ok, ShouldBeFalse)

			_, ok = find(groups, "w|x")
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given an unsorted pool with duplicate entries", t, func() {
		pool := []model.Applicant{
			social("z", 80, 2),
			social("a", 85, 2),
			social("a", 85, 2),
		}

		groups := grouping.NewGenerator().Generate(pool)

		Convey("Then members are canonically ordered and duplicates collapse", func() {
			So(keys(groups), ShouldResemble, []string{"a", "z", "a|z"})

			pair, _ := find(groups, "a|z")
			So(pair.Members[0].ID, ShouldEqual, "a")
			So(pair.Members[1].ID, ShouldEqual, "z")
		})
	})

	Convey("Given an empty pool", t, func() {
		groups := grouping.NewGenerator().Generate(nil)

		Convey("Then no groups are produced", func() {
			So(groups, ShouldBeEmpty)
		})
	})
}
