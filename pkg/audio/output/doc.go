// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Device state machine and malgo, oto, PortAudio and null backends
// Package output provides audio playback devices.
//
// A Device binds one decode.Source to one Backend. Backends pull PCM from
// the device; the device reports Stopped, Playing or Paused and closes its
// Stopped channel exactly once when the stream ends or is stopped.
//
// Example:
//
//	backend, err := output.New("malgo")
//	dev := output.NewDevice(backend)
//	defer dev.Close()
//	err = dev.Init(src)
//	err = dev.Play()
//	<-dev.Stopped()
package output
