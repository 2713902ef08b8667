package reminder

// Voice defaults applied by Normalize.
const (
	DefaultVolume = 1.0
	DefaultRate   = 0.9
	DefaultPitch  = 1.0

	minRate  = 0.1
	maxRate  = 10.0
	maxPitch = 2.0
)

// VoiceOptions configures how a reminder sounds. Zero values mean "unset".
type VoiceOptions struct {
	// Voice is the speech voice name; empty uses the provider default.
	Voice string `yaml:"voice,omitempty"`
	// Volume is the loudness of the alarm sound and the speech, 0-1.
	Volume float64 `yaml:"volume,omitempty"`
	// Rate is the speech rate, 0.1-10.
	Rate float64 `yaml:"rate,omitempty"`
	// Pitch is the speech pitch, 0-2.
	Pitch float64 `yaml:"pitch,omitempty"`
	// AlarmSound is the path of the alarm sound file.
	AlarmSound string `yaml:"alarm_sound,omitempty"`
}

// Merge returns o with every field set in override replacing it.
func (o VoiceOptions) Merge(override *VoiceOptions) VoiceOptions {
	if override == nil {
		return o
	}

	if override.Voice != "" {
		o.Voice = override.Voice
	}

	if override.Volume != 0 {
		o.Volume = override.Volume
	}

	if override.Rate != 0 {
		o.Rate = override.Rate
	}

	if override.Pitch != 0 {
		o.Pitch = override.Pitch
	}

	if override.AlarmSound != "" {
		o.AlarmSound = override.AlarmSound
	}

	return o
}

// Normalize fills unset fields with defaults and clamps the rest into range.
func (o VoiceOptions) Normalize() VoiceOptions {
	if o.Volume <= 0 {
		o.Volume = DefaultVolume
	}

	if o.Rate <= 0 {
		o.Rate = DefaultRate
	}

	if o.Pitch <= 0 {
		o.Pitch = DefaultPitch
	}

	o.Volume = min(o.Volume, 1)
	o.Rate = min(max(o.Rate, minRate), maxRate)
	o.Pitch = min(o.Pitch, maxPitch)

	return o
}
