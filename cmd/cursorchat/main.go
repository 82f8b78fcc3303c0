// Command cursorchat drives the Cursor Agent bridge from a terminal.
//
// Commands:
//   - chat: send a prompt and stream the agent's response
//   - status: show the CLI's authentication status
//   - login: run the interactive login flow
//   - sessions: list stored conversations
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/inkwell-app/agentbridge/config"
	"github.com/inkwell-app/agentbridge/cursoragent"
	"github.com/inkwell-app/agentbridge/internal/logging"
	"github.com/inkwell-app/agentbridge/ledger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cursorchat",
		Short: "Chat with the Cursor Agent CLI",
		Long: `cursorchat embeds the Cursor Agent CLI as a conversational session.

Use 'chat' to send a prompt and stream the response.
Use 'status' and 'login' to manage authentication.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Logging), nil
}

type chatFlags struct {
	model      string
	workDir    string
	resume     string
	binary     string
	unattended bool
}

func newChatCmd() *cobra.Command {
	flags := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat [flags] <prompt>",
		Short: "Send a prompt and stream the agent's response",
		Example: `  cursorchat chat "Summarize TODO.md"
  cursorchat chat --model gpt-5.2 "Refactor the parser"
  cursorchat chat --resume 0198-abcd "Now add tests"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, strings.Join(args, " "), flags)
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "", "Model for new sessions")
	cmd.Flags().StringVar(&flags.workDir, "cwd", "", "Working directory for the agent")
	cmd.Flags().StringVar(&flags.resume, "resume", "", "Resume the given remote session")
	cmd.Flags().StringVar(&flags.binary, "binary", "", "Explicit path to the cursor-agent binary")
	cmd.Flags().BoolVar(&flags.unattended, "unattended", false, "Run tools without interactive approval")

	return cmd
}

func runChat(cmd *cobra.Command, prompt string, flags *chatFlags) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if flags.model != "" {
		cfg.Agent.Model = flags.model
	}
	if flags.workDir != "" {
		cfg.Agent.WorkingDirectory = flags.workDir
	}
	if flags.binary != "" {
		cfg.Agent.BinaryPath = flags.binary
	}
	if flags.unattended {
		cfg.Agent.Unattended = true
	}

	bridge := cursoragent.NewBridge(cfg.BridgeOptions(log))
	conversations := ledger.NewLedger()
	recorder := ledger.NewRecorder(bridge, conversations)
	defer recorder.Close()

	done := make(chan int, 1)

	var mu sync.Mutex
	var turnErr error
	setErr := func(err error) {
		mu.Lock()
		turnErr = err
		mu.Unlock()
	}
	lastErr := func() error {
		mu.Lock()
		defer mu.Unlock()
		return turnErr
	}

	bridge.Subscribe(cursoragent.EventInit, func(ev cursoragent.Event) {
		init := ev.(cursoragent.InitEvent)
		fmt.Fprintf(os.Stderr, "session %s (%s)\n", init.SessionID, init.Model)
	})
	bridge.Subscribe(cursoragent.EventAssistant, func(ev cursoragent.Event) {
		fmt.Print(ev.(cursoragent.AssistantEvent).Text)
	})
	bridge.Subscribe(cursoragent.EventToolCall, func(ev cursoragent.Event) {
		tc := ev.(cursoragent.ToolCallEvent)
		if tc.Phase == cursoragent.ToolCallStarted {
			fmt.Fprintf(os.Stderr, "[tool %s]\n", tc.Call.Name())
		}
	})
	bridge.Subscribe(cursoragent.EventError, func(ev cursoragent.Event) {
		setErr(ev.(cursoragent.ErrorEvent).Err)
	})
	bridge.Subscribe(cursoragent.EventApprovalRequired, func(ev cursoragent.Event) {
		go answerApproval(bridge, ev.(cursoragent.ApprovalEvent).Request)
	})
	bridge.Subscribe(cursoragent.EventClose, func(ev cursoragent.Event) {
		done <- ev.(cursoragent.CloseEvent).ExitCode
	})

	var sendOpts []cursoragent.SendOption
	if flags.resume != "" {
		sendOpts = append(sendOpts, cursoragent.WithResume(flags.resume))
	}
	if err := recorder.Send(cmd.Context(), prompt, sendOpts...); err != nil {
		return err
	}
	// Auth and spawn failures are emitted synchronously inside Send; no close
	// event will follow them.
	if err := lastErr(); err != nil {
		return err
	}

	code := <-done
	fmt.Println()
	if err := lastErr(); err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("agent exited with code %d", code)
	}

	if cfg.Ledger.Path != "" {
		if err := persistConversation(cfg.Ledger.Path, conversations); err != nil {
			log.Warn("could not persist conversation")
			return nil
		}
	}
	return nil
}

// answerApproval shows the detected MCP approval prompt and forwards the
// user's single-key answer.
func answerApproval(bridge *cursoragent.Bridge, req cursoragent.ApprovalRequest) {
	fmt.Fprintln(os.Stderr, "\nMCP servers need your approval:")
	for _, srv := range req.Servers {
		if srv.URL != "" {
			fmt.Fprintf(os.Stderr, "  - %s (%s)\n", srv.Name, srv.URL)
		} else {
			fmt.Fprintf(os.Stderr, "  - %s\n", srv.Name)
		}
	}
	fmt.Fprint(os.Stderr, "[a]pprove all, [c]ontinue without approval, [q]uit: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		bridge.SubmitApproval(cursoragent.ApprovalQuit)
		return
	}

	switch strings.TrimSpace(strings.ToLower(line)) {
	case "a":
		bridge.SubmitApproval(cursoragent.ApprovalApproveAll)
	case "q":
		bridge.SubmitApproval(cursoragent.ApprovalQuit)
	default:
		bridge.SubmitApproval(cursoragent.ApprovalContinueWithout)
	}
}

func persistConversation(path string, conversations *ledger.Ledger) error {
	id := conversations.CurrentSessionID()
	if id == "" {
		return nil
	}
	store, err := ledger.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveSession(context.Background(), id,
		conversations.CurrentModel(), conversations.Messages(""))
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the agent CLI's authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			bridge := cursoragent.NewBridge(cfg.BridgeOptions(log))
			out, err := bridge.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the agent CLI's login flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			bridge := cursoragent.NewBridge(cfg.BridgeOptions(log))
			out, err := bridge.Login(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Ledger.Path == "" {
				return fmt.Errorf("no ledger path configured")
			}
			store, err := ledger.OpenStore(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Printf("%s  %-20s %4d messages  %s\n",
					s.ID, s.Model, s.Messages, s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
