package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shree2604/badminton-ai/internal/video"
)

// maxMetricEntries caps how many frame results are embedded in the prompt,
// keeping the LLM context small for long videos.
const maxMetricEntries = 100

// Role selects which audience the report is written for.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCoach, RoleStudent, RoleParent:
		return true
	}
	return false
}

var roleFocus = map[Role]string{
	RoleCoach:   "Write for the player's coach: detailed technical analysis, drills to assign, tactical corrections.",
	RoleStudent: "Write for the player themselves: encouraging, player-focused feedback in plain language.",
	RoleParent:  "Write for the player's parent: a general progress summary without jargon.",
}

// Request carries everything the generator needs for one report.
type Request struct {
	Analysis   *video.Analysis
	Transcript string
	Role       Role
	Locale     string
	PlayerNum  int
}

// metricEntry is the JSON projection of one frame result embedded in the
// prompt: timestamped metrics only, no raw keypoints.
type metricEntry struct {
	FrameNumber int                `json:"frame_number"`
	Timestamp   float64            `json:"timestamp"`
	Metrics     map[string]float64 `json:"metrics"`
}

// BuildPrompt assembles the coaching prompt: the fixed section structure,
// the audience focus, and a truncated projection of the pose metrics plus
// the transcript.
func BuildPrompt(req Request) (string, error) {
	role := req.Role
	if !role.Valid() {
		role = RoleCoach
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	playerNum := req.PlayerNum
	if playerNum < 1 {
		playerNum = 1
	}

	entries := make([]metricEntry, 0, maxMetricEntries)
	for _, r := range req.Analysis.Results {
		if len(entries) >= maxMetricEntries {
			break
		}
		if r.Keypoints == nil {
			continue
		}
		entries = append(entries, metricEntry{
			FrameNumber: r.FrameNumber,
			Timestamp:   r.Timestamp,
			Metrics:     r.Metrics,
		})
	}

	metricsJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metric entries: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an elite badminton coach analysing a player's match video and associated on-court audio conversations.\n")
	b.WriteString("Summarise key findings and provide actionable feedback.\n")
	fmt.Fprintf(&b, "Return the report in %s language.\n", locale)
	fmt.Fprintf(&b, "The analysis concerns player %d.\n", playerNum)
	b.WriteString(roleFocus[role])
	b.WriteString("\nSections:\n")
	b.WriteString("1. Overall performance summary\n")
	b.WriteString("2. Footwork & positioning insights (use pose data when confidence>0.3)\n")
	b.WriteString("3. Shot selection / technique observations\n")
	b.WriteString("4. Communication & mindset (from audio)\n")
	b.WriteString("5. Actionable next-steps (bullet points)\n")
	fmt.Fprintf(&b, "\nPose coverage: %d frames with a detected pose, %d without, %d failed frames.\n",
		req.Analysis.FramesWithPose, req.Analysis.FramesWithoutPose, len(req.Analysis.Failures))
	fmt.Fprintf(&b, "\nPose metrics (first %d entries):\n%s\n", maxMetricEntries, metricsJSON)
	fmt.Fprintf(&b, "\nTranscript:\n%s\n", req.Transcript)

	return b.String(), nil
}
