package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// newCaptcha returns a question and its expected answer. Arithmetic only:
// the point is filtering out the laziest bots, not humans.
func newCaptcha() (string, string) {
	a := rand.Intn(9) + 1
	b := rand.Intn(9) + 1
	return fmt.Sprintf("🤖 Quick check: what is %d + %d?", a, b), fmt.Sprintf("%d", a+b)
}

func verifyCaptcha(input, answer string) bool {
	return strings.TrimSpace(input) == answer
}
