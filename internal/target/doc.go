// Package target finds Delphi controls and drives them with physical input.
//
// Lookups go through the bridge when it is reachable and fall back to the
// form's native child windows otherwise. Controls with a native handle are
// positioned by asking the OS for their rectangle; non-windowed controls
// are positioned from the owning form's client origin plus the offset the
// bridge reported, which is a snapshot and goes stale if the form moves.
//
// Text is entered by clicking the control and typing, not by WM_SETTEXT:
// DevExpress editors only update their internal value through their own
// focus and keyboard handling.
package target
