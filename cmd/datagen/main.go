package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/referralnet/internal/auth"
	"github.com/vanshika/referralnet/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		users       = flag.Int("users", cfg.NumUsers, "number of accounts to generate")
		roots       = flag.Int("roots", cfg.Roots, "number of accounts without a referrer")
		maxDepth    = flag.Int("max-depth", cfg.MaxDepth, "maximum referral levels below a root")
		maxFanout   = flag.Int("max-fanout", cfg.MaxFanout, "maximum direct referrals per account")
		maxIncome   = flag.Float64("max-income", cfg.MaxIncome, "upper bound for ROI and level income")
		password    = flag.String("password", "", "shared demo password stored (hashed) on every account")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write accounts.json and referrals.json")
		writeStdout = flag.Bool("stdout", false, "write accounts to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumUsers:  *users,
		Roots:     *roots,
		MaxDepth:  *maxDepth,
		MaxFanout: *maxFanout,
		MaxIncome: *maxIncome,
		Seed:      *seed,
	}
	if *password != "" {
		hash, err := auth.DefaultHasher.Hash(*password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid password: %v\n", err)
			os.Exit(1)
		}
		genCfg.PasswordHash = hash
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset.Accounts); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d accounts into %s\n", len(dataset.Accounts), *outputDir)
}
