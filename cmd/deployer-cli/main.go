package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/guker/stack-deployment/internal/stack"
	"github.com/guker/stack-deployment/pkg/deployer"
)

var (
	deployerClient = deployer.NewDeployerClient(deployer.LocalHostPort)
)

func main() {
	debug := flag.Bool("d", false, "add debug logs")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:    "up",
				Aliases: []string{"u"},
				Usage:   "deploy a stack",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						log.Fatal("up: stack_name yaml_file")
					}

					deployStack(c.Args().First(), c.Args().Get(1))

					return nil
				},
			},
			{
				Name:    "down",
				Aliases: []string{"d"},
				Usage:   "delete a stack",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("down: stack_name")
					}

					deleteStack(c.Args().First())

					return nil
				},
			},
			{
				Name:  "ps",
				Usage: "list stacks, or the instances of one stack",
				Action: func(c *cli.Context) error {
					if c.Args().Len() == 0 {
						listStacks()
					} else {
						listInstances(c.Args().First())
					}

					return nil
				},
			},
			{
				Name:    "validate",
				Aliases: []string{"v"},
				Usage:   "statically check a stack descriptor",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						log.Fatal("validate: yaml_file")
					}

					validateStack(c.Args().First())

					return nil
				},
			},
			{
				Name:  "config",
				Usage: "print the normalized form of a stack descriptor",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						log.Fatal("config: stack_name yaml_file")
					}

					printConfig(c.Args().First(), c.Args().Get(1))

					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func deployStack(stackName, filename string) {
	// load locally first so descriptor problems surface before the daemon is
	// involved
	_, err := stack.Load(stackName, filename)
	if err != nil {
		log.Fatal(err)
	}

	fileBytes, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Fatal("error reading file: ", err)
	}

	workDir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		log.Fatal(err)
	}

	status := deployerClient.DeployStack(stackName, workDir, fileBytes)
	if status != http.StatusOK {
		log.Fatalf("got status %d from deployer", status)
	}
}

func deleteStack(stackName string) {
	status := deployerClient.DeleteStack(stackName)
	if status != http.StatusOK {
		log.Fatalf("got status %d from deployer", status)
	}
}

func listStacks() {
	stacks, status := deployerClient.GetStacks()
	if status != http.StatusOK {
		log.Fatalf("got status %d from deployer", status)
	}

	for _, stackDTO := range stacks {
		fmt.Printf("%s\t%v\n", stackDTO.Name, stackDTO.Services)
	}
}

func listInstances(stackName string) {
	instances, status := deployerClient.GetStack(stackName)
	if status != http.StatusOK {
		log.Fatalf("got status %d from deployer", status)
	}

	for _, instance := range instances {
		fmt.Printf("%s\t%s\t%s\t%s\n", instance.InstanceId, instance.ServiceName, instance.Image, instance.State)
	}
}

func validateStack(filename string) {
	_, err := stack.Load("validate", filename)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("descriptor is valid")
}

func printConfig(stackName, filename string) {
	s, err := stack.Load(stackName, filename)
	if err != nil {
		log.Fatal(err)
	}

	configBytes, err := yaml.Marshal(s)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(string(configBytes))
}
