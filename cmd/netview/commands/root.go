package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanshika/referralnet/internal/config"
	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/logging"
	"github.com/vanshika/referralnet/internal/referralclient"
	"github.com/vanshika/referralnet/internal/service"
)

const tokenEnv = "NETVIEW_TOKEN"

var (
	home        string
	serverURL   string
	payloadFile string
	maxDepth    int

	cfg    config.Config
	logger *slog.Logger
	client *referralclient.Client
)

// errLoginRequired is returned when the service rejects or lacks a session.
var errLoginRequired = errors.New("please log in (netview login)")

func Execute() error {
	root := &cobra.Command{
		Use:          "netview",
		Short:        "Browse your referral network from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".referralnet")
			}
			if serverURL != "" {
				cfg.Referral.BaseURL = serverURL
			}
			if maxDepth > 0 {
				cfg.Referral.MaxDepth = maxDepth
			}
			logger = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
			client = referralclient.New(cfg.Referral, cfg.Auth.ValidationCacheTTL)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.referralnet)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "referral service base URL (default $REFERRAL_BASE_URL)")
	root.PersistentFlags().StringVar(&payloadFile, "file", "", "read the nested referral payload from a JSON file instead of the service")
	root.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum referral levels to build (default $REFERRAL_MAX_DEPTH)")

	root.AddCommand(loginCmd(), registerCmd(), logoutCmd(), whoamiCmd(), treeCmd(), statsCmd(), dashboardCmd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

// loadView fetches the payload from --file or the service and builds a fully
// expanded view of it.
func loadView(ctx context.Context) (*service.View, error) {
	referrals := service.NewReferralService(logger, cfg.Referral.MaxDepth)

	var src service.Fetcher
	if payloadFile != "" {
		src = service.FetcherFunc(func(context.Context) ([]domain.RawNode, error) {
			return readPayload(payloadFile)
		})
	} else {
		token, _, err := authenticate(ctx)
		if err != nil {
			return nil, err
		}
		src = service.FetcherFunc(func(ctx context.Context) ([]domain.RawNode, error) {
			return client.FetchReferrals(ctx, token)
		})
	}

	view, err := referrals.Load(ctx, src)
	if errors.Is(err, domain.ErrUnauthenticated) {
		return nil, errLoginRequired
	}
	return view, err
}

// authenticate returns the saved token once the service has confirmed it.
func authenticate(ctx context.Context) (string, referralclient.Profile, error) {
	token, err := currentToken()
	if err != nil {
		return "", referralclient.Profile{}, err
	}
	profile, err := client.ValidateToken(ctx, token)
	if errors.Is(err, domain.ErrUnauthenticated) {
		return "", referralclient.Profile{}, errLoginRequired
	}
	if err != nil {
		return "", referralclient.Profile{}, err
	}
	return token, profile, nil
}

func readPayload(path string) ([]domain.RawNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nodes []domain.RawNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return nodes, nil
}
