package registry_test

import (
	"errors"
	"testing"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/registry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given an attribute table", t, func() {
		reg, err := registry.New([]model.Person{
			{ID: "Heidi", Role: model.RoleViz, Squad: "FS"},
			{ID: "Peter", Role: model.RoleData, Squad: "FS"},
			{ID: "Navya", Role: model.RoleData, Squad: "formerFS"},
			{ID: "Drifter", Role: model.RoleEngineer},
		})
		So(err, ShouldBeNil)

		Convey("When looking up a known person", func() {
			attrs, err := reg.AttributesOf("Heidi")

			Convey("Then the attributes are returned", func() {
				So(err, ShouldBeNil)
				So(attrs.Role, ShouldEqual, model.RoleViz)
				So(attrs.Squad, ShouldEqual, model.Squad("FS"))
				So(attrs.Guest, ShouldBeFalse)
			})
		})

		Convey("When looking up an unknown person", func() {
			_, err := reg.AttributesOf("Nobody")

			Convey("Then it fails with ErrUnknownPerson", func() {
				So(errors.Is(err, registry.ErrUnknownPerson), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Nobody")
			})
		})

		Convey("When a person has no squad", func() {
			attrs, err := reg.AttributesOf("Drifter")
			So(err, ShouldBeNil)
			So(attrs.Squad, ShouldEqual, model.SquadNone)
		})

		Convey("When resolving a guest", func() {
			attrs, err := reg.Lookup(model.Guest(model.RoleEngineer, 0))

			Convey("Then the placeholder role is used without the table", func() {
				So(err, ShouldBeNil)
				So(attrs.Guest, ShouldBeTrue)
				So(attrs.Role, ShouldEqual, model.RoleEngineer)
				So(reg.Contains("Engineer"), ShouldBeFalse)
			})
		})

		Convey("When comparing squads", func() {
			heidi, _ := reg.AttributesOf("Heidi")
			peter, _ := reg.AttributesOf("Peter")
			navya, _ := reg.AttributesOf("Navya")
			g1, _ := reg.Lookup(model.Guest(model.RoleData, 0))
			g2, _ := reg.Lookup(model.Guest(model.RoleData, 1))

			So(registry.SameSquad(heidi, peter), ShouldBeTrue)
			So(registry.SameSquad(peter, navya), ShouldBeFalse)
			So(registry.SameSquad(g1, g2), ShouldBeFalse)
			So(registry.SameRole(peter, g1), ShouldBeTrue)
		})

		Convey("Then ids are sorted", func() {
			So(reg.IDs(), ShouldResemble, []string{"Drifter", "Heidi", "Navya", "Peter"})
			So(reg.Len(), ShouldEqual, 4)
		})
	})

	Convey("Given a table with a duplicate id", t, func() {
		_, err := registry.New([]model.Person{
			{ID: "A", Role: model.RoleViz},
			{ID: "A", Role: model.RoleData},
		})
		So(errors.Is(err, registry.ErrDuplicatePerson), ShouldBeTrue)
	})

	Convey("Given a person without a role", t, func() {
		_, err := registry.New([]model.Person{{ID: "A"}})
		So(errors.Is(err, registry.ErrInvalidPerson), ShouldBeTrue)
	})
}
