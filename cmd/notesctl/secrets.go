package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"lesson-notes-server/internal/config"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/pkg/hash"
)

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Hash a shared LMS key for LMS_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := hash.Hash(args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return err
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		studentID int64
		courseID  int64
		unit      int
		lesson    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a widget launch token with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			req := &domain.IframeTokenRequest{StudentID: studentID, CourseID: courseID}
			if cmd.Flags().Changed("unit") {
				req.UnitNumber = &unit
			}
			if cmd.Flags().Changed("lesson") {
				req.LessonTitle = &lesson
			}

			resp, err := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration).IssueIframeToken(req)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(resp)
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "Student ID")
	cmd.Flags().Int64Var(&courseID, "course", 0, "Course ID")
	cmd.Flags().IntVar(&unit, "unit", 0, "Unit number")
	cmd.Flags().StringVar(&lesson, "lesson", "", "Lesson title")
	cmd.MarkFlagRequired("student")
	cmd.MarkFlagRequired("course")

	return cmd
}
