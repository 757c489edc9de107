package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/firebase/genkit/go/genkit"
	"github.com/spf13/cobra"

	"taskflow-backend/ai_services"
	"taskflow-backend/flows"
	"taskflow-backend/mcpserver"
)

var flowInputFile string

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Comandos dos flows de IA",
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista os flows disponíveis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.OutOrStdout())
	},
}

func printCatalog(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FLOW\tDESCRIÇÃO")
	for _, info := range flows.Catalog() {
		fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Description)
	}
	return tw.Flush()
}

var flowsRunCmd = &cobra.Command{
	Use:   "run <flow>",
	Short: "Executa um flow com a entrada JSON lida do stdin ou de --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cliRuntime(cmd.Context())
		if err != nil {
			return err
		}

		input, err := readFlowInput(cmd.InOrStdin())
		if err != nil {
			return err
		}

		g, err := genkit.Init(cmd.Context())
		if err != nil {
			return fmt.Errorf("erro ao inicializar o genkit: %w", err)
		}
		run, ok := ai_services.RegisterGenkitFlows(g, rt).Runner(args[0])
		if !ok {
			return fmt.Errorf("flow desconhecido: %s", args[0])
		}

		out, err := run(cmd.Context(), input)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func readFlowInput(stdin io.Reader) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if flowInputFile != "" {
		data, err = os.ReadFile(flowInputFile)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler a entrada do flow: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("a entrada do flow não é um JSON válido")
	}
	return data, nil
}

// cliRuntime monta o Runtime dos comandos de linha de comando, sem usuário nem equipe.
func cliRuntime(ctx context.Context) (flows.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return flows.Runtime{}, err
	}
	if err := cfg.ValidateAI(); err != nil {
		return flows.Runtime{}, err
	}
	model, err := ai_services.NewGeminiModel(ctx, cfg.AI)
	if err != nil {
		return flows.Runtime{}, err
	}
	return flows.Runtime{Model: model, Session: flows.Session{UserID: "cli"}}, nil
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Comandos do servidor MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expõe os flows como ferramentas MCP pelo stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rt, err := cliRuntime(ctx)
		if err != nil {
			return err
		}
		if err := mcpserver.Serve(ctx, mcpserver.New(rt, appVersion)); err != nil {
			return fmt.Errorf("erro no servidor MCP: %w", err)
		}
		return nil
	},
}

func init() {
	flowsRunCmd.Flags().StringVarP(&flowInputFile, "file", "f", "", "arquivo JSON com a entrada do flow")
	flowsCmd.AddCommand(flowsListCmd, flowsRunCmd)
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(flowsCmd, mcpCmd)
}
