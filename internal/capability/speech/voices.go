package speech

import (
	"strings"

	"github.com/oshokin/med-reminder/internal/capability"
)

// PreferredVoice picks the default English voice, falling back to the first one.
func PreferredVoice(voices []capability.Voice) (capability.Voice, bool) {
	if len(voices) == 0 {
		return capability.Voice{}, false
	}

	for _, v := range voices {
		if v.Default && strings.HasPrefix(strings.ToLower(v.Lang), "en-") {
			return v, true
		}
	}

	return voices[0], true
}
