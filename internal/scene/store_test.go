package scene

import (
	"bytes"
	"testing"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x, y, w, h float64) element.Element {
	return element.NewShape("rectangle", geometry.Rect{X: x, Y: y, Width: w, Height: h})
}

func addAll(t *testing.T, s *Store, els ...element.Element) []string {
	t.Helper()
	ids := make([]string, len(els))
	for i, e := range els {
		require.NoError(t, s.AddElement(e))
		ids[i] = e.ID
	}
	return ids
}

func TestAddElementAppendsToOrder(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10))

	assert.Equal(t, ids, s.Order())
	assert.Equal(t, 2, s.Len())

	err := s.AddElement(func() element.Element { e := rect(0, 0, 1, 1); e.ID = ids[0]; return e }())
	assert.ErrorIs(t, err, ErrDuplicateID)

	bad := rect(0, 0, 1, 1)
	bad.Text = &element.TextContent{}
	assert.ErrorIs(t, s.AddElement(bad), ErrInvalidElement)
}

func TestUpdateElement(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10))

	require.NoError(t, s.UpdateElement(ids[0], func(e *element.Element) {
		e.Shape.Fill = "#ff0000"
		e.X = 5
	}))
	e, ok := s.Element(ids[0])
	require.True(t, ok)
	assert.Equal(t, "#ff0000", e.Shape.Fill)
	assert.Equal(t, 5.0, e.X)

	assert.ErrorIs(t, s.UpdateElement("missing", func(*element.Element) {}), ErrNotFound)
	assert.ErrorIs(t, s.UpdateElement(ids[0], func(e *element.Element) { e.ID = "x" }), ErrImmutableFields)
}

func TestElementReturnsCopy(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10))

	e, _ := s.Element(ids[0])
	e.Shape.Fill = "#000000"

	again, _ := s.Element(ids[0])
	assert.Equal(t, element.DefaultFill, again.Shape.Fill)
}

// Deleting removes the element from the map, the order and group member
// lists.
func TestDeleteRemovesFromOrderAndGroups(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(40, 0, 10, 10))
	gid, err := s.Group(ids[:2])
	require.NoError(t, err)

	n := s.DeleteElements(ids[0])
	assert.Equal(t, 1, n)

	_, ok := s.Element(ids[0])
	assert.False(t, ok)
	assert.NotContains(t, s.Order(), ids[0])

	g, ok := s.Element(gid)
	require.True(t, ok)
	assert.Equal(t, []string{ids[1]}, g.Group.ChildIDs)
	assert.Equal(t, geometry.Rect{X: 20, Y: 0, Width: 10, Height: 10}, g.Box())
}

func TestDeleteGroupCascades(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(40, 0, 10, 10))
	gid, err := s.Group(ids[:2])
	require.NoError(t, err)

	assert.Equal(t, 3, s.DeleteElements(gid))
	assert.Equal(t, []string{ids[2]}, s.Order())
}

func TestDeleteLastMemberDeletesGroup(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10))
	gid, err := s.Group(ids)
	require.NoError(t, err)

	s.DeleteElements(ids...)
	_, ok := s.Element(gid)
	assert.False(t, ok)
	assert.Empty(t, s.Order())
}

func TestDeleteClearsSelectionAndEditing(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10))
	require.NoError(t, s.SelectElement(ids[0], false))
	require.NoError(t, s.SetEditingElementID(ids[0]))

	s.DeleteElements(ids[0])
	assert.Empty(t, s.SelectedIDs())
	assert.Empty(t, s.EditingID())
}

func TestSelectingMemberSelectsGroup(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(40, 0, 10, 10))
	gid, err := s.Group(ids[:2])
	require.NoError(t, err)

	require.NoError(t, s.SelectElement(ids[1], false))
	assert.Equal(t, []string{gid}, s.SelectedIDs())
	assert.False(t, s.IsSelected(ids[1]))

	require.NoError(t, s.ToggleSelection(ids[2]))
	assert.ElementsMatch(t, []string{gid, ids[2]}, s.SelectedIDs())

	s.SelectAll()
	assert.ElementsMatch(t, []string{gid, ids[2]}, s.SelectedIDs())

	s.ClearSelection()
	assert.Empty(t, s.SelectedIDs())
}

func TestMoveGroupMovesMembers(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10))
	gid, err := s.Group(ids)
	require.NoError(t, err)

	require.NoError(t, s.MoveElements([]string{gid}, 5, 7))

	a, _ := s.Element(ids[0])
	b, _ := s.Element(ids[1])
	g, _ := s.Element(gid)
	assert.Equal(t, geometry.Point2D{X: 5, Y: 7}, geometry.Point2D{X: a.X, Y: a.Y})
	assert.Equal(t, geometry.Point2D{X: 25, Y: 7}, geometry.Point2D{X: b.X, Y: b.Y})
	assert.Equal(t, geometry.Rect{X: 5, Y: 7, Width: 30, Height: 10}, g.Box())
}

func TestResizeGroupScalesMembers(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(30, 0, 10, 10))
	gid, err := s.Group(ids)
	require.NoError(t, err)

	require.NoError(t, s.ResizeElement(gid, geometry.Rect{X: 0, Y: 0, Width: 80, Height: 20}))

	b, _ := s.Element(ids[1])
	assert.InDelta(t, 60, b.X, 1e-9)
	assert.InDelta(t, 20, b.Width, 1e-9)
	assert.InDelta(t, 20, b.Height, 1e-9)
}

func TestUngroupPromotesMembers(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10))
	gid, err := s.Group(ids)
	require.NoError(t, err)
	require.Equal(t, []string{gid}, s.SelectedIDs())

	members, err := s.Ungroup(gid)
	require.NoError(t, err)
	assert.Equal(t, ids, members)
	assert.True(t, s.IsTopLevel(ids[0]))
	assert.ElementsMatch(t, ids, s.SelectedIDs())
	assert.NotContains(t, s.Order(), gid)

	_, err = s.Ungroup(ids[0])
	assert.ErrorIs(t, err, ErrNotGroup)
}

func TestGroupSitsAfterLastMember(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(40, 0, 10, 10), rect(60, 0, 10, 10))
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	inner, err := s.Group([]string{a, c})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, inner, d}, s.Order())

	outer, err := s.Group([]string{b, inner})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, inner, outer, d}, s.Order())
}

func TestGroupNeedsTwoMembers(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10))
	_, err := s.Group(ids)
	assert.ErrorIs(t, err, ErrGroupTooSmall)
}

func TestZOrder(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 1, 1), rect(0, 0, 1, 1), rect(0, 0, 1, 1), rect(0, 0, 1, 1))
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	require.NoError(t, s.BringToFront(a))
	assert.Equal(t, []string{b, c, d, a}, s.Order())

	require.NoError(t, s.SendToBack(a))
	assert.Equal(t, []string{a, b, c, d}, s.Order())

	require.NoError(t, s.BringForward(a, b))
	assert.Equal(t, []string{c, a, b, d}, s.Order())

	require.NoError(t, s.SendBackward(d))
	assert.Equal(t, []string{c, a, d, b}, s.Order())

	assert.ErrorIs(t, s.BringToFront("missing"), ErrNotFound)
}

func TestZOrderMovesGroupMembers(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 1, 1), rect(0, 0, 1, 1), rect(0, 0, 1, 1))
	gid, err := s.Group(ids[:2])
	require.NoError(t, err)

	require.NoError(t, s.SendToBack(ids[2]))
	require.NoError(t, s.BringToFront(gid))
	assert.Equal(t, []string{ids[2], ids[0], ids[1], gid}, s.Order())
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	s := NewStore()
	s.SetPan(30, -10)
	anchor := geometry.Point2D{X: 200, Y: 150}
	before := s.Viewport().ScreenToWorld(anchor)

	s.ZoomAt(anchor, 2)
	after := s.Viewport().ScreenToWorld(anchor)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.Equal(t, 2.0, s.Viewport().Zoom)

	s.SetZoom(100)
	assert.Equal(t, MaxZoom, s.Viewport().Zoom)
	s.SetZoom(0.001)
	assert.Equal(t, MinZoom, s.Viewport().Zoom)
}

func TestSubscribeNotifiesUntilCancelled(t *testing.T) {
	s := NewStore()
	var kinds []ChangeKind
	cancel := s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	addAll(t, s, rect(0, 0, 1, 1))
	s.SetZoom(2)
	cancel()
	s.SetZoom(3)

	assert.Equal(t, []ChangeKind{ChangeElements, ChangeViewport}, kinds)
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{PanX: 123.5, PanY: -40, Zoom: 2.75}
	p := geometry.Point2D{X: -17.25, Y: 900}
	back := v.ScreenToWorld(v.WorldToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestDocumentRoundTrip(t *testing.T) {
	s := NewStore()
	ids := addAll(t, s, rect(0, 0, 10, 10), rect(20, 0, 10, 10), element.NewLine(0, 0, 50, 50))
	_, err := s.Group(ids[:2])
	require.NoError(t, err)
	s.SetSnapToGrid(true)

	var buf bytes.Buffer
	require.NoError(t, s.Document().Write(&buf))

	doc, err := LoadDocument(&buf)
	require.NoError(t, err)

	loaded := NewStore()
	require.NoError(t, loaded.Replace(doc))
	assert.Equal(t, s.Order(), loaded.Order())
	assert.True(t, loaded.SnapToGrid())
	p, ok := loaded.ParentOf(ids[0])
	assert.True(t, ok)
	assert.Equal(t, s.TopLevel(ids[0]), p)
}

func TestReplaceDropsMissingMembers(t *testing.T) {
	a := rect(0, 0, 10, 10)
	g := element.NewGroup([]string{a.ID, "ghost"}, geometry.Rect{})
	doc := NewDocument("fixture")
	doc.Elements = []element.Element{a, g}

	s := NewStore()
	require.NoError(t, s.Replace(doc))
	got, _ := s.Element(g.ID)
	assert.Equal(t, []string{a.ID}, got.Group.ChildIDs)
	assert.Equal(t, a.Box(), got.Box())

	doc.Elements = append(doc.Elements, a)
	assert.ErrorIs(t, s.Replace(doc), ErrDuplicateID)
}

func TestFitViewport(t *testing.T) {
	v := FitViewport(geometry.NewRect(100, 100, 200, 100), 440, 240, 20)
	assert.Equal(t, Viewport{PanX: -180, PanY: -180, Zoom: 2}, v)

	tl := v.WorldToScreen(geometry.Point2D{X: 100, Y: 100})
	assert.Equal(t, geometry.Point2D{X: 20, Y: 20}, tl)

	// Clamped zoom still centers the box.
	v = FitViewport(geometry.NewRect(0, 0, 1, 1), 100, 100, 0)
	assert.Equal(t, MaxZoom, v.Zoom)
	assert.Equal(t, geometry.Point2D{X: 50, Y: 50}, v.WorldToScreen(geometry.Point2D{X: 0.5, Y: 0.5}))

	// Empty boxes center at 100%.
	v = FitViewport(geometry.Rect{X: 10, Y: 10}, 100, 100, 10)
	assert.Equal(t, Viewport{PanX: 40, PanY: 40, Zoom: 1}, v)
}
