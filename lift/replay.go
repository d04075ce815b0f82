// Package lift implements the register-to-state lifter (spec §4.3,
// component C): replaying a decoded display-list command sequence into a
// register shadow, then decomposing that shadow into a semantic material
// record.
package lift

import (
	"github.com/gogpu/gxcodec/dlist"
	"github.com/gogpu/gxcodec/gxerr"
	"github.com/gogpu/gxcodec/gxlog"
	"github.com/gogpu/gxcodec/gxregs"
)

// Replay applies cmds to a fresh register shadow in stream order (spec §5:
// "the lifter processes BP/CP/XF tokens strictly in stream order, and the
// BP mask rule depends on this order"). A write to a register this module
// does not model is non-fatal: it is recorded as a warning and skipped
// (spec §7 InvalidRegister, "non-fatal on read"). IndexedLoadCommand and
// DrawCommand carry no register state and are ignored here.
func Replay(cmds []dlist.Command) (*gxregs.State, []gxerr.Warning) {
	s := gxregs.New()
	var warnings []gxerr.Warning

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case dlist.BPCommand:
			if !gxregs.IsKnownBP(c.Register) {
				warnings = append(warnings, gxerr.Warning{
					Where: "BP", Msg: gxerr.InvalidRegister(uint32(c.Register)).Error(),
				})
				continue
			}
			s.WriteBP(c.Register, c.Value)
		case dlist.CPCommand:
			if !gxregs.IsKnownCP(c.Register) {
				warnings = append(warnings, gxerr.Warning{
					Where: "CP", Msg: gxerr.InvalidRegister(uint32(c.Register)).Error(),
				})
				continue
			}
			s.WriteCP(c.Register, c.Value)
		case dlist.XFCommand:
			if !gxregs.IsKnownXF(c.Register) {
				warnings = append(warnings, gxerr.Warning{
					Where: "XF", Msg: gxerr.InvalidRegister(uint32(c.Register)).Error(),
				})
				continue
			}
			s.WriteXF(c.Register, c.Values)
		case dlist.NOPCommand, dlist.IndexedLoadCommand, dlist.DrawCommand:
			// No register shadow state to update.
		}
	}

	if len(warnings) > 0 {
		gxlog.Logger().Warn("lift.Replay", "warnings", len(warnings))
	}
	return s, warnings
}
