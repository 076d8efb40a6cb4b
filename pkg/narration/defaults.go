package narration

// Built-in narration lines. They keep a hunt playable when its
// definition ships no narration content of its own; hunt-provided
// pools replace them category by category.

var defaultOnboarding = []string{
	"Good. You can hear me now. Keep your eyes open and your voice low.",
	"There you are. I was starting to wonder. Let's begin.",
	"Welcome, seeker. The house has been waiting for you.",
}

var defaultWrongAnswer = []string{
	"No. That is not the word.",
	"Close, perhaps. But the lock does not turn.",
	"The house disagrees. Look again.",
	"Not quite. The answer is still hiding from you.",
}

var defaultReveal = []string{
	"Well done. The map remembers where you have been.",
	"Another door opens. Follow the trail.",
	"Yes. That is the word. Move on.",
	"The way forward shows itself. Go.",
}

var defaultWhisper = []string{
	"Listen closely. Read the riddle once more, slowly.",
	"You already have everything you need. Look around you.",
	"Patience. The answer is nearer than you think.",
}
