// Package cursoragent embeds the Cursor Agent CLI in a host application as a
// conversational session.
//
// The package owns the full lifecycle of one agent invocation: resolving
// which binary to run, spawning it, decoding the NDJSON stream on stdout into
// typed events, watching stderr for the interactive MCP approval prompt, and
// tearing the process down on completion or cancel.
//
// # Quick Start
//
//	bridge := cursoragent.NewBridge(cursoragent.Options{Model: "gpt-5.2"})
//	bridge.Subscribe(cursoragent.EventAssistant, func(ev cursoragent.Event) {
//	    fmt.Print(ev.(cursoragent.AssistantEvent).Text)
//	})
//	bridge.Subscribe(cursoragent.EventClose, func(ev cursoragent.Event) {
//	    fmt.Printf("\n[exit %d]\n", ev.(cursoragent.CloseEvent).ExitCode)
//	})
//	if err := bridge.Send(ctx, "Summarize this note"); err != nil {
//	    log.Fatal(err)
//	}
//
// Send returns once the process is spawned; everything after that arrives as
// events. A later Send on the same bridge resumes the remote session the
// agent reported in its init message.
//
// # Approval handshake
//
// Some configurations pause before any structured output and print a menu on
// stderr asking whether to trust declared MCP servers, then block on a single
// keystroke. The bridge surfaces this as an EventApprovalRequired event;
// answer it with SubmitApproval.
package cursoragent
