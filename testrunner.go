package inkwell

import (
	"encoding/json"
	"fmt"
)

type scriptOp uint8

const (
	opMove scriptOp = iota
	opMoveBy
	opTeleport
	opScroll
	opScreenshot
	opWait
)

// scriptActions maps the JSON action names onto ops. Sprite ops look the
// sprite up by name when they run.
var scriptActions = map[string]scriptOp{
	"move":       opMove,
	"moveBy":     opMoveBy,
	"teleport":   opTeleport,
	"scroll":     opScroll,
	"screenshot": opScreenshot,
	"wait":       opWait,
}

func (op scriptOp) targetsSprite() bool { return op <= opTeleport }

// scriptStep is one validated script line.
type scriptStep struct {
	op     scriptOp
	sprite string
	label  string
	x, y   float64
	frames int
}

// TestRunner plays a scripted sequence of sprite moves, scrolls and
// screenshots, one step per frame. Attach it with Scene.SetTestRunner.
//
// Scripts are JSON:
//
//	{"steps": [
//		{"action": "move", "sprite": "ball", "x": 10, "y": 20},
//		{"action": "moveBy", "sprite": "ball", "x": 4},
//		{"action": "teleport", "sprite": "ball", "x": 10, "y": 20},
//		{"action": "scroll", "x": -40, "y": 0},
//		{"action": "screenshot", "label": "after-hit"},
//		{"action": "wait", "frames": 3}
//	]}
//
// move goes through MoveTo and so collides; teleport does not.
type TestRunner struct {
	steps []scriptStep
	next  int
	hold  int
	err   error
}

// LoadTestScript validates a JSON script. Unknown actions and sprite steps
// without a sprite name are rejected here rather than mid-run.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script struct {
		Steps []struct {
			Action string  `json:"action"`
			Sprite string  `json:"sprite"`
			Label  string  `json:"label"`
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
			Frames int     `json:"frames"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}

	steps := make([]scriptStep, len(script.Steps))
	for i, raw := range script.Steps {
		op, ok := scriptActions[raw.Action]
		if !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, raw.Action)
		}
		if op.targetsSprite() && raw.Sprite == "" {
			return nil, fmt.Errorf("parse test script: step %d: %s needs a sprite", i, raw.Action)
		}
		steps[i] = scriptStep{op: op, sprite: raw.Sprite, label: raw.Label, x: raw.X, y: raw.Y, frames: raw.Frames}
	}
	return &TestRunner{steps: steps}, nil
}

// SetTestRunner attaches runner to the scene. It advances at the start of
// every Move, before followers and collisions. Nil detaches it.
func (sc *Scene) SetTestRunner(runner *TestRunner) {
	sc.testRunner = runner
}

// Done reports whether every step has run and no wait is pending.
func (r *TestRunner) Done() bool {
	return r.next >= len(r.steps) && r.hold == 0
}

// Err returns the first step that could not run, such as a move naming a
// sprite that is not in the scene. Later steps still run.
func (r *TestRunner) Err() error {
	return r.err
}

// step runs one frame of the script against sc.
func (r *TestRunner) step(sc *Scene) {
	if r.hold > 0 {
		r.hold--
		return
	}
	if r.next >= len(r.steps) {
		return
	}
	st := r.steps[r.next]
	r.next++

	switch st.op {
	case opScroll:
		sc.SetDrawOffset(int(st.x), int(st.y))
	case opScreenshot:
		sc.Screenshot(st.label)
	case opWait:
		// The wait's own frame counts as the first one.
		r.hold = max(st.frames-1, 0)
	default:
		s := sc.SpriteByName(st.sprite)
		if s == nil {
			if r.err == nil {
				r.err = fmt.Errorf("test script step %d: no sprite named %q", r.next-1, st.sprite)
			}
			return
		}
		switch st.op {
		case opMove:
			s.MoveTo(st.x, st.y)
		case opMoveBy:
			s.MoveBy(st.x, st.y)
		case opTeleport:
			s.SetPosition(st.x, st.y)
		}
	}
}
