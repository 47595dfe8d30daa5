package game

import "github.com/talgya/orbital-trader/internal/tutorial"

// holdTutorialStep keeps a buy prompt off screen while the player cannot
// afford to follow it.
func (g *Game) holdTutorialStep(s tutorial.Step) bool {
	return s.Completion.Type == tutorial.PlayerAct && s.Completion.Action == "buy-item" &&
		g.State.Player.Credits < g.Catalog.Rules.TutorialMinCredits
}

func (g *Game) reportTutorial(a tutorial.Action) (*tutorial.Step, bool) {
	return g.tutorials.Check(&g.State.Tutorials, a)
}

// Screen reports that the player opened a screen.
func (g *Game) Screen(screen string) Result {
	step, _ := g.reportTutorial(tutorial.Action{Type: tutorial.ScreenLoad, Screen: screen})
	return Result{Tutorial: step, Notices: g.drain()}
}

// TutorialNext acknowledges an informational step.
func (g *Game) TutorialNext() Result {
	step, _ := g.reportTutorial(tutorial.Action{Type: tutorial.Info})
	return Result{Tutorial: step}
}

// SkipTutorial abandons the active tutorial batch.
func (g *Game) SkipTutorial() Result {
	g.tutorials.Skip(&g.State.Tutorials)
	return Result{}
}

// CurrentTutorial returns the step on screen, if any.
func (g *Game) CurrentTutorial() (*tutorial.Step, bool) {
	return g.tutorials.Current(&g.State.Tutorials)
}
