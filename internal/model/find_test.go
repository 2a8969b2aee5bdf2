package model

import "testing"

func sampleTree() []Control {
	return []Control{
		{
			Handle: 100, Name: "frmLogin", ClassName: "TfrmLogin", Visible: true, Enabled: true,
			Children: []Control{
				{Handle: 0, Name: "Btn1", ClassName: "TcxButton", Text: "OK", Visible: true, Enabled: true},
				{
					Handle: 101, Name: "pnl", ClassName: "TPanel", Visible: true, Enabled: true,
					Children: []Control{
						{Handle: 0, Name: "Btn1", ClassName: "TcxButton", Text: "Cancel", Visible: true, Enabled: true},
						{Handle: 102, Name: "edUser", ClassName: "TcxTextEdit", Visible: true, Enabled: true},
					},
				},
			},
		},
	}
}

func TestFindControls_ByAutoID(t *testing.T) {
	got := FindControls(sampleTree(), "Btn1", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Text != "OK" || got[1].Text != "Cancel" {
		t.Errorf("expected depth-first order OK, Cancel; got %q, %q", got[0].Text, got[1].Text)
	}
}

func TestFindControls_AutoIDAndCaption(t *testing.T) {
	got := FindControls(sampleTree(), "Btn1", "Cancel")
	if len(got) != 1 || got[0].Text != "Cancel" {
		t.Fatalf("expected the Cancel button only, got %+v", got)
	}
}

func TestFindControls_CaptionExactMatch(t *testing.T) {
	if got := FindControls(sampleTree(), "", "ok"); len(got) != 0 {
		t.Errorf("caption match must be exact, got %+v", got)
	}
}

func TestFindControls_NoCriteria(t *testing.T) {
	if got := FindControls(sampleTree(), "", ""); got != nil {
		t.Errorf("expected nil for empty criteria, got %+v", got)
	}
}

func TestFindControlByHandle(t *testing.T) {
	got := FindControlByHandle(sampleTree(), 102)
	if got == nil || got.Name != "edUser" {
		t.Fatalf("expected edUser, got %+v", got)
	}
	if FindControlByHandle(sampleTree(), 0) != nil {
		t.Error("handle 0 must never match")
	}
}

func TestCountControls(t *testing.T) {
	if n := CountControls(sampleTree()); n != 5 {
		t.Errorf("expected 5 nodes, got %d", n)
	}
}

func TestWindowAsControl(t *testing.T) {
	w := Window{Handle: 55, Title: "OK", ClassName: "Button", Rect: Rect{1, 2, 3, 4}, Visible: true, Enabled: true}
	c := w.AsControl()
	if !c.Windowed() || c.Text != "OK" || c.Bounds() != (Rect{1, 2, 3, 4}) {
		t.Errorf("unexpected conversion: %+v", c)
	}
}

func TestRect(t *testing.T) {
	r := Rect{Left: 5, Top: 5, Width: 10, Height: 10}.Offset(Point{X: 100, Y: 100})
	if r.Left != 105 || r.Top != 105 || r.Right() != 115 || r.Bottom() != 115 {
		t.Errorf("unexpected rect %+v", r)
	}
}
