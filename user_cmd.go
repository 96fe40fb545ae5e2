package main

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/log"
)

func userCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage admin users"}
	cmd.AddCommand(userAddCmd(v))
	return cmd
}

func userAddCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Create an admin user, or reset its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := askPassword()
			if err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			return withStore(v, func(cfg config.Config, store *database.Store) error {
				if err := store.AddUser(cmd.Context(), args[0], hash); err != nil {
					return err
				}
				if !cfg.AuthEnabled() {
					log.Warn("user saved, but admin auth stays off until a token secret is set")
				}
				log.Infof("user %s saved", args[0])
				return nil
			})
		},
	}
}

func askPassword() (string, error) {
	var password, confirm string
	err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required))
	if err != nil {
		return "", err
	}
	err = survey.AskOne(&survey.Password{Message: "Repeat password:"}, &confirm)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
