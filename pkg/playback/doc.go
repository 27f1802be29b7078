// ABOUTME: Playback driver package
// ABOUTME: Runs file and raw PCM playback sessions against an output backend
// Package playback opens an audio source, binds it to a fresh output device
// and waits for playback to end.
//
// Blocking calls poll the device every PollInterval and stop early on a
// console key press or when ctx ends:
//
//	driver := playback.New(playback.Config{Console: c})
//	res, err := driver.PlayFile(ctx, "recorded_audio.wav")
//
// PlayFileAsync returns a Pending that resolves from the device's stopped
// signal instead of polling:
//
//	res, err := driver.PlayFileAsync(ctx, "recorded_audio.wav").Wait(ctx)
//
// Every session releases its device exactly once, whichever way it ends.
package playback
