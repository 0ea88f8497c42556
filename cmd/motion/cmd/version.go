package cmd

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Show the motion CLI version and build time.",
		Usage: "motion version",
		Run: func([]string) error {
			printVersion()
			return nil
		},
	})
}
