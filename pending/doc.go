// Package pending turns poll-only completion signalling into single-shot
// callbacks.
//
// A Registry keeps handles of in-flight operations together with the listener
// that wants their outcome:
//   - Register binds a listener to a handle (last register wins)
//   - Poll, driven once per external tick, delivers every handle that reached
//     a terminal state and forgets it
//   - DiscardAll abandons all outstanding interest without delivering
//
// What counts as terminal is decided by the handle itself, so the registry is
// agnostic of the success or failure taxonomy of the operations it tracks.
package pending
