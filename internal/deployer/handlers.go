package deployer

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	api "github.com/guker/stack-deployment/api/deployer"
	"github.com/guker/stack-deployment/internal/engine"
	"github.com/guker/stack-deployment/internal/stack"
	"github.com/guker/stack-deployment/internal/utils"
)

var (
	stackEngine *engine.Engine
	stacks      *stacksTable
)

func InitHandlers() {
	var err error

	stackEngine, err = engine.New()
	if err != nil {
		log.Error("unable to create docker client")
		panic(err)
	}

	stacks = newStacksTable()
}

func deployStackHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug("handling deploy stack")

	var requestBody api.DeployStackRequestBody

	err := json.NewDecoder(r.Body).Decode(&requestBody)
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if requestBody.StackName == "" || len(requestBody.StackYAMLBytes) == 0 {
		log.Errorf("invalid deploy request: %+v", requestBody)
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	s, err := stack.LoadBytes(requestBody.StackName, requestBody.WorkDir, requestBody.StackYAMLBytes)
	if err != nil {
		log.Error(err)

		if invalidErr, ok := err.(*stack.InvalidStackError); ok {
			utils.SendJSONReplyStatus(w, http.StatusBadRequest, invalidErr.Problems)

			return
		}

		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if !stacks.addStackIfAbsent(s) {
		w.WriteHeader(http.StatusConflict)

		return
	}

	go deployStackAsync(s)
}

func deleteStackHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug("handling delete stack")

	stackName := utils.ExtractPathVar(r, stackNamePathVar)

	s, ok := stacks.getStack(stackName)
	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	stacks.deleteStack(stackName)

	go deleteStackAsync(s)
}

func getStacksHandler(w http.ResponseWriter, _ *http.Request) {
	stackNames := stacks.stackNames()

	stackDTOs := make([]api.StackDTO, 0, len(stackNames))

	for _, stackName := range stackNames {
		s, ok := stacks.getStack(stackName)
		if !ok {
			continue
		}

		order, err := s.StartOrder()
		if err != nil {
			log.Error(err)

			continue
		}

		stackDTOs = append(stackDTOs, api.StackDTO{Name: stackName, Services: order})
	}

	utils.SendJSONReplyOK(w, stackDTOs)
}

func getStackHandler(w http.ResponseWriter, r *http.Request) {
	stackName := utils.ExtractPathVar(r, stackNamePathVar)

	if !stacks.hasStack(stackName) {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	instances, err := stackEngine.StackInstances(r.Context(), stackName)
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	instanceDTOs := make([]api.InstanceDTO, 0, len(instances))
	for _, instance := range instances {
		instanceDTOs = append(instanceDTOs, api.InstanceDTO{
			InstanceId:  instance.InstanceId,
			StackName:   instance.StackName,
			ServiceName: instance.ServiceName,
			ContainerId: instance.ContainerId,
			Image:       instance.Image,
			State:       instance.State,
		})
	}

	utils.SendJSONReplyOK(w, instanceDTOs)
}

func deployStackAsync(s *stack.Stack) {
	err := stackEngine.DeployStack(context.Background(), s)
	if err != nil {
		log.Errorf("deploying stack %s: %s", s.Name, err)
		stacks.deleteStack(s.Name)
	}
}

func deleteStackAsync(s *stack.Stack) {
	err := stackEngine.DeleteStack(context.Background(), s)
	if err != nil {
		log.Errorf("deleting stack %s: %s", s.Name, err)
	}
}
