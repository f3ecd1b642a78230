/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cluster

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

// Client reads and scales ReplicationControllers and Deployments through the Kubernetes API
type Client struct {
	kubeClient kubernetes.Interface
}

// NewClient returns a Client backed by kubeClient
func NewClient(kubeClient kubernetes.Interface) *Client {
	return &Client{kubeClient: kubeClient}
}

// KubeClient returns the underlying clientset
func (c *Client) KubeClient() kubernetes.Interface {
	return c.kubeClient
}

// ListResources returns the workloads of kind in namespace keyed by name
func (c *Client) ListResources(ctx context.Context, kind scaler.Kind, namespace string) (map[string]scaler.Resource, error) {
	resources := make(map[string]scaler.Resource)
	switch kind {
	case scaler.KindReplicationController:
		list, err := c.kubeClient.CoreV1().ReplicationControllers(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, errors.Wrapf(err, "replicationcontroller list query in namespace %s failed", namespace)
		}
		for i := range list.Items {
			r := fromReplicationController(&list.Items[i])
			resources[r.Name] = r
		}
	case scaler.KindDeployment:
		list, err := c.kubeClient.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, errors.Wrapf(err, "deployment list query in namespace %s failed", namespace)
		}
		for i := range list.Items {
			r := fromDeployment(&list.Items[i])
			resources[r.Name] = r
		}
	default:
		return nil, fmt.Errorf("kind %s not supported", kind)
	}
	return resources, nil
}

// GetResource reads one workload, scaler.ErrResourceNotFound is returned when it does not exist
func (c *Client) GetResource(ctx context.Context, kind scaler.Kind, name string, namespace string) (*scaler.Resource, error) {
	switch kind {
	case scaler.KindReplicationController:
		rc, err := c.kubeClient.CoreV1().ReplicationControllers(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, getError(err, "replicationcontroller", name, namespace)
		}
		r := fromReplicationController(rc)
		return &r, nil
	case scaler.KindDeployment:
		dep, err := c.kubeClient.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, getError(err, "deployment", name, namespace)
		}
		r := fromDeployment(dep)
		return &r, nil
	}
	return nil, fmt.Errorf("kind %s not supported", kind)
}

// ScaleResource sets the desired replica count of a workload
func (c *Client) ScaleResource(ctx context.Context, kind scaler.Kind, name string, namespace string, replicas int32) error {
	switch kind {
	case scaler.KindReplicationController:
		rc, err := c.kubeClient.CoreV1().ReplicationControllers(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return getError(err, "replicationcontroller", name, namespace)
		}
		rcCopy := rc.DeepCopy()
		rcCopy.Spec.Replicas = int32p(replicas)
		_, err = c.kubeClient.CoreV1().ReplicationControllers(namespace).Update(ctx, rcCopy, metav1.UpdateOptions{})
		if err != nil {
			return errors.Wrapf(err, "replicationcontroller %s.%s update query failed", name, namespace)
		}
		return nil
	case scaler.KindDeployment:
		dep, err := c.kubeClient.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return getError(err, "deployment", name, namespace)
		}
		depCopy := dep.DeepCopy()
		depCopy.Spec.Replicas = int32p(replicas)
		_, err = c.kubeClient.AppsV1().Deployments(namespace).Update(ctx, depCopy, metav1.UpdateOptions{})
		if err != nil {
			return errors.Wrapf(err, "deployment %s.%s update query failed", name, namespace)
		}
		return nil
	}
	return fmt.Errorf("kind %s not supported", kind)
}

func getError(err error, kind, name, namespace string) error {
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%s %s.%s: %w", kind, name, namespace, scaler.ErrResourceNotFound)
	}
	return errors.Wrapf(err, "%s %s.%s get query failed", kind, name, namespace)
}

func fromReplicationController(rc *corev1.ReplicationController) scaler.Resource {
	r := scaler.Resource{
		Kind:            scaler.KindReplicationController,
		Name:            rc.Name,
		Namespace:       rc.Namespace,
		DesiredReplicas: 1,
		CurrentReplicas: rc.Status.Replicas,
	}
	if rc.Spec.Replicas != nil {
		r.DesiredReplicas = *rc.Spec.Replicas
	}
	return r
}

func fromDeployment(dep *appsv1.Deployment) scaler.Resource {
	r := scaler.Resource{
		Kind:            scaler.KindDeployment,
		Name:            dep.Name,
		Namespace:       dep.Namespace,
		DesiredReplicas: 1,
		CurrentReplicas: dep.Status.Replicas,
	}
	if dep.Spec.Replicas != nil {
		r.DesiredReplicas = *dep.Spec.Replicas
	}
	return r
}

func int32p(i int32) *int32 {
	return &i
}
